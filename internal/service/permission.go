package service

// Owned is anything with a single owning user.
type Owned interface {
	OwnerID() int
}

// IsAuthor reports whether actorID may modify resource. resource must be a
// nil interface or a non-nil pointer; a typed nil such as (*entity.Recipe)(nil)
// is not caught.
func IsAuthor(resource Owned, actorID int) bool {
	if resource == nil || actorID == 0 {
		return false
	}
	return resource.OwnerID() == actorID
}
