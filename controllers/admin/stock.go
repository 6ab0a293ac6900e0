package adminControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type ingredientInput struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" binding:"required"`
}

type quantityInput struct {
	Quantity float64 `json:"quantity" binding:"gte=0"`
}

type recipeInput struct {
	ProductID    string  `json:"product_id" binding:"required,uuid"`
	IngredientID string  `json:"ingredient_id" binding:"required,uuid"`
	QuantityUsed float64 `json:"quantity_used" binding:"required,gt=0"`
}

// GET /admin/ingredients
func GetIngredients(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ingredients []models.Ingredient
		if err := db.Order("name ASC").Find(&ingredients).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ingredients"})
			return
		}
		c.JSON(http.StatusOK, ingredients)
	}
}

// POST /admin/ingredients
func CreateIngredient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ingredientInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ingredient := models.Ingredient{Name: input.Name, Quantity: input.Quantity, Unit: input.Unit}
		if err := db.Create(&ingredient).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ingredient"})
			return
		}
		c.JSON(http.StatusCreated, ingredient)
	}
}

// PATCH /admin/ingredients/:id
// Stock counts drift against reality; this is the manual correction after a
// physical recount.
func UpdateIngredientQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input quantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result := db.Model(&models.Ingredient{}).Where("id = ?", c.Param("id")).Update("quantity", input.Quantity)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ingredient"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Quantity updated"})
	}
}

// DELETE /admin/ingredients/:id
func DeleteIngredient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.Model(&models.Recipe{}).Where("ingredient_id = ?", c.Param("id")).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check recipes"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Ingredient is used by a recipe"})
			return
		}
		result := db.Delete(&models.Ingredient{}, "id = ?", c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ingredient"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted"})
	}
}

// GET /admin/recipes
func GetRecipes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var recipes []models.Recipe
		if err := db.Preload("Ingredient").Find(&recipes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipes"})
			return
		}
		c.JSON(http.StatusOK, recipes)
	}
}

// POST /admin/recipes
func CreateRecipe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input recipeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
			return
		}
		var ingredient models.Ingredient
		if err := db.First(&ingredient, "id = ?", input.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ingredient"})
			return
		}

		recipe := models.Recipe{
			ProductID:    input.ProductID,
			IngredientID: input.IngredientID,
			QuantityUsed: input.QuantityUsed,
		}
		if err := db.Create(&recipe).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

// DELETE /admin/recipes/:id
func DeleteRecipe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.Recipe{}, "id = ?", c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
	}
}
