package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"winelabel/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var product models.Product
	err = db.WithContext(ctx).
		Preload("Appellation").
		Preload("Nutrition").
		Preload("Certifications").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_number ASC") }).
		Preload("Ingredients.Ingredient").
		Where("sku_code = ?", "CM-2019-750").
		First(&product).Error
	if err != nil {
		t.Fatalf("query seeded product: %v", err)
	}
	if product.Appellation == nil || product.Appellation.Name != "Margaux AOC" {
		t.Fatalf("expected Margaux appellation, got %+v", product.Appellation)
	}
	if product.Nutrition == nil || product.Nutrition.EnergyKcal == nil || *product.Nutrition.EnergyKcal != 76 {
		t.Fatalf("expected seeded nutrition, got %+v", product.Nutrition)
	}
	if product.ShortCode == "" {
		t.Fatal("expected product short code to be assigned on create")
	}
	if len(product.Ingredients) != 4 {
		t.Fatalf("expected 4 ingredient links, got %d", len(product.Ingredients))
	}
	if product.Ingredients[2].Ingredient == nil || product.Ingredients[2].Ingredient.ENumber != "E220" {
		t.Fatalf("expected sulfur dioxide at position 3, got %+v", product.Ingredients[2])
	}

	var ingredient models.Ingredient
	if err := db.WithContext(ctx).Where("e_number = ?", "E220").First(&ingredient).Error; err != nil {
		t.Fatalf("query ingredient: %v", err)
	}
	if len(ingredient.Allergens) != 1 || ingredient.Allergens[0] != "sulfites" {
		t.Fatalf("expected sulfites allergen, got %v", ingredient.Allergens)
	}

	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", Email).First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(Password)); err != nil {
		t.Fatalf("unexpected password hash: %v", err)
	}
	if product.UserID != user.ID {
		t.Fatalf("expected product to belong to seeded user")
	}
}

func TestNewReturnsIsolatedDatabases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first, err := New(ctx)
	if err != nil {
		t.Fatalf("first mock database: %v", err)
	}
	second, err := New(ctx)
	if err != nil {
		t.Fatalf("second mock database: %v", err)
	}

	if err := first.WithContext(ctx).Where("sku_code = ?", "MR-NV-750").Delete(&models.Product{}).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	var count int64
	if err := second.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected untouched second database to hold 3 products, got %d", count)
	}
}
