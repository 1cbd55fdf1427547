package mock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"winelabel/internal/db"
	applog "winelabel/internal/log"
	"winelabel/models"
)

const (
	// Email and Password are the credentials of the seeded account.
	Email    = "sommelier@winelabel.app"
	Password = "cellar"
)

// New returns an in-memory sqlite database seeded with representative cellar data.
// Every call gets its own database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:winelabel-mock-%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}

	if err := db.SerializeWrites(database); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func float(v float64) *float64 { return &v }

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx := database.WithContext(ctx)

	user := &models.User{Email: Email, PasswordHash: string(password)}
	if err := tx.Create(user).Error; err != nil {
		return err
	}
	profile := &models.Profile{Model: models.Model{ID: user.ID}, Email: Email, FullName: "Camille Vigneron"}
	if err := tx.Create(profile).Error; err != nil {
		return err
	}

	margaux := models.Appellation{Name: "Margaux AOC", Description: "Left bank Bordeaux appellation on gravel soils."}
	chablis := models.Appellation{Name: "Chablis AOC", Description: "Northernmost Burgundy appellation known for Chardonnay."}
	champagne := models.Appellation{Name: "Champagne AOC", Description: "Traditional method sparkling wines from the Champagne region."}
	for _, appellation := range []*models.Appellation{&margaux, &chablis, &champagne} {
		if err := tx.Create(appellation).Error; err != nil {
			return err
		}
	}

	sulfites := models.Ingredient{Name: "Sulfur Dioxide", Category: "Preservative", ENumber: "E220", Allergens: []string{"sulfites"}}
	metabisulfite := models.Ingredient{Name: "Potassium Metabisulphite", Category: "Preservative", ENumber: "E224", Allergens: []string{"sulfites"}}
	ascorbic := models.Ingredient{Name: "Ascorbic Acid", Category: "Antioxidant", ENumber: "E300", Allergens: []string{}}
	tartaric := models.Ingredient{Name: "Tartaric Acid", Category: "Acidifier", ENumber: "E334", Allergens: []string{}}
	albumin := models.Ingredient{Name: "Egg Albumin", Category: "Fining Agent", Allergens: []string{"eggs"}}
	casein := models.Ingredient{Name: "Casein", Category: "Fining Agent", Allergens: []string{"milk"}}
	grapes := models.Ingredient{Name: "Grapes", Category: models.DefaultIngredientCategory, Allergens: []string{}}
	for _, ingredient := range []*models.Ingredient{&sulfites, &metabisulfite, &ascorbic, &tartaric, &albumin, &casein, &grapes} {
		if err := tx.Create(ingredient).Error; err != nil {
			return err
		}
	}

	products := []*models.Product{
		{
			Name:            "Château Margaux",
			Brand:           "Château Margaux",
			NetVolume:       "750 ml",
			Vintage:         "2019",
			Type:            models.ProductTypeRed,
			SugarContent:    "Dry",
			Alcohol:         "13.5",
			CountryOfOrigin: "France",
			SKUCode:         "CM-2019-750",
			EANGTIN:         "3760012345678",
			AppellationID:   &margaux.ID,
			UserID:          user.ID,
			Nutrition: &models.NutritionInfo{
				EnergyKJ: float(318), EnergyKcal: float(76), Fat: float(0), Saturates: float(0),
				Carbohydrate: float(2.6), Sugars: float(0.6), Protein: float(0.1), Salt: float(0.01),
			},
			Certifications: &models.Certifications{Organic: true},
			Operator: &models.FoodBusinessOperator{
				Type:    "Producer",
				Name:    "Château Margaux SAS",
				Address: "33460 Margaux, France",
			},
			Consumption: &models.ResponsibleConsumption{Age: true, Driving: true, Pregnancy: true},
			Ingredients: []models.ProductIngredient{
				{IngredientID: grapes.ID, OrderNumber: 1},
				{IngredientID: tartaric.ID, OrderNumber: 2},
				{IngredientID: sulfites.ID, OrderNumber: 3},
				{IngredientID: albumin.ID, OrderNumber: 4},
			},
		},
		{
			Name:            "Chablis Premier Cru Vaillons",
			Brand:           "Domaine Laroche",
			NetVolume:       "750 ml",
			Vintage:         "2021",
			Type:            models.ProductTypeWhite,
			SugarContent:    "Dry",
			Alcohol:         "12.5",
			CountryOfOrigin: "France",
			SKUCode:         "DL-2021-750",
			AppellationID:   &chablis.ID,
			UserID:          user.ID,
			Certifications:  &models.Certifications{Vegan: true, Vegetarian: true},
			Consumption:     &models.ResponsibleConsumption{Pregnancy: true},
			Ingredients: []models.ProductIngredient{
				{IngredientID: grapes.ID, OrderNumber: 1},
				{IngredientID: metabisulfite.ID, OrderNumber: 2},
			},
		},
		{
			Name:            "Brut Réserve",
			Brand:           "Maison Rémy",
			NetVolume:       "750 ml",
			Type:            models.ProductTypeChampagne,
			SugarContent:    "Brut",
			Alcohol:         "12",
			CountryOfOrigin: "France",
			SKUCode:         "MR-NV-750",
			AppellationID:   &champagne.ID,
			RedirectLink:    "https://maison-remy.example/brut-reserve",
			UserID:          user.ID,
			Ingredients: []models.ProductIngredient{
				{IngredientID: grapes.ID, OrderNumber: 1},
				{IngredientID: ascorbic.ID, OrderNumber: 2},
				{IngredientID: sulfites.ID, OrderNumber: 3},
				{IngredientID: casein.ID, OrderNumber: 4},
			},
		},
	}

	for _, product := range products {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded", "products", len(products))
	return nil
}
