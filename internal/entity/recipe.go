package entity

import "time"

const DefaultImageURL = "/media/images/default.jpg"

type Recipe struct {
	ID          int          `json:"id"`
	UserID      int          `json:"user_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Image       string       `json:"image,omitempty"`
	PostedAt    time.Time    `json:"posted_at"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

func (r *Recipe) OwnerID() int {
	return r.UserID
}

// ImageURL falls back to the shared placeholder when no image was uploaded.
func (r *Recipe) ImageURL() string {
	if r.Image == "" {
		return DefaultImageURL
	}
	return "/media/" + r.Image
}

type Ingredient struct {
	ID       int    `json:"id"`
	RecipeID int    `json:"recipe_id"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
}

// IngredientRow is one row of the ingredient entry form, saved or not.
type IngredientRow struct {
	Name   string `json:"name" form:"name"`
	Amount string `json:"amount" form:"amount"`
}

func (r IngredientRow) Blank() bool {
	return r.Name == "" && r.Amount == ""
}

/*
Mysql Table

CREATE TABLE recipes (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	name VARCHAR(50) NOT NULL,
	description TEXT NOT NULL,
	image VARCHAR(255) NULL,
	posted_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE ingredients (
	id INT AUTO_INCREMENT PRIMARY KEY,
	recipe_id INT NOT NULL,
	name VARCHAR(200) NOT NULL,
	amount VARCHAR(100) NOT NULL,
	FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
);
*/
