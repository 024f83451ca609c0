package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

func (tf *TestFixtures) createUser(role models.UserRole, status models.UserStatus, name string) (*models.User, error) {
	suffix := rand.Intn(900000000) + 100000000
	user := &models.User{
		Role:        role,
		Status:      status,
		DisplayName: name,
		Email:       fmt.Sprintf("%s.%d@example.com", role, suffix),
	}
	if role == models.UserRoleSupplier {
		company := name + " Print Co"
		user.CompanyName = &company
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test %s: %w", role, err)
	}
	return user, nil
}

// CreateTestSupplier creates an active supplier
func (tf *TestFixtures) CreateTestSupplier(name string) (*models.User, error) {
	return tf.createUser(models.UserRoleSupplier, models.UserStatusActive, name)
}

// CreateInactiveSupplier creates a deactivated supplier
func (tf *TestFixtures) CreateInactiveSupplier(name string) (*models.User, error) {
	return tf.createUser(models.UserRoleSupplier, models.UserStatusInactive, name)
}

// CreateTestCustomer creates an active customer
func (tf *TestFixtures) CreateTestCustomer() (*models.User, error) {
	return tf.createUser(models.UserRoleCustomer, models.UserStatusActive, "Jane Customer")
}

// CreateTestProductUnit creates a category, product and one unit of it
func (tf *TestFixtures) CreateTestProductUnit(categoryName, sizeLabel string, tier int) (*models.ProductUnit, error) {
	category := models.Category{Name: categoryName}
	if err := tf.DB.DB.Where(models.Category{Name: categoryName}).FirstOrCreate(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create test category: %w", err)
	}

	product := &models.Product{CategoryID: category.ID, Name: categoryName + " standard"}
	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}

	unit := &models.ProductUnit{ProductID: product.ID, SizeLabel: sizeLabel, QuantityTier: tier}
	if err := tf.DB.DB.Create(unit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product unit: %w", err)
	}
	return unit, nil
}

// CreateTestSupplierPrice stores an active price for a supplier and unit
func (tf *TestFixtures) CreateTestSupplierPrice(supplierID, unitID uint, price float64, days int) (*models.SupplierPrice, error) {
	row := &models.SupplierPrice{
		SupplierID:    supplierID,
		ProductUnitID: unitID,
		PricePerUnit:  price,
		DeliveryDays:  days,
		IsActive:      utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create test supplier price: %w", err)
	}
	return row, nil
}

// CreateTestJob stores a historical job created at createdAt
func (tf *TestFixtures) CreateTestJob(supplierID, unitID uint, status models.SupplierJobStatus, createdAt time.Time, readyAt *time.Time, promisedDays *int) (*models.SupplierJob, error) {
	job := &models.SupplierJob{
		SupplierID:           supplierID,
		ProductUnitID:        unitID,
		Quantity:             1,
		Price:                100,
		Status:               status,
		PromisedDeliveryDays: promisedDays,
		ReadyAt:              readyAt,
		CreatedAt:            createdAt,
	}
	if err := tf.DB.DB.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create test supplier job: %w", err)
	}
	return job, nil
}

// CreateTestQuote creates a draft quote with one item per unit, each of the given quantity
func (tf *TestFixtures) CreateTestQuote(customerID uint, quantity int, unitIDs ...uint) (*models.Quote, []*models.QuoteItem, error) {
	quote := &models.Quote{CustomerID: customerID, MarkupPercent: utils.DefaultMarkupPercent}
	if err := tf.DB.DB.Create(quote).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test quote: %w", err)
	}

	items := make([]*models.QuoteItem, 0, len(unitIDs))
	for _, unitID := range unitIDs {
		items = append(items, &models.QuoteItem{QuoteID: quote.ID, ProductUnitID: unitID, Quantity: quantity})
	}
	if len(items) > 0 {
		if err := tf.DB.DB.Create(&items).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create test quote items: %w", err)
		}
	}
	return quote, items, nil
}
