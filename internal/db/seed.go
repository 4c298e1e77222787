package db

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/diewo77/factura/internal/models"
	"github.com/diewo77/factura/internal/money"
)

// Seed creates a default admin plus demo data if they do not exist yet.
// Intended for development; gated behind DB_SEED by the caller.
func Seed(conn *gorm.DB) {
	var admin models.User
	if err := conn.Where("email = ?", "admin@example.com").First(&admin).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		admin = models.User{Name: "Admin", Email: "admin@example.com"}
		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("seed: hash admin password: %v", err)
			return
		}
		if err := conn.Create(&admin).Error; err != nil {
			log.Printf("seed: create admin: %v", err)
		}
	}

	var client models.Client
	if err := conn.Where("email = ?", "client@example.com").First(&client).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		client = models.Client{Name: "Demo Client", Address: "1 Demo Street", Phone: "123456", Email: "client@example.com"}
		if err := client.SetPassword("client123"); err != nil {
			log.Printf("seed: hash client password: %v", err)
			return
		}
		if err := conn.Create(&client).Error; err != nil {
			log.Printf("seed: create client: %v", err)
		}
	}

	demoProducts := []models.Product{
		{Description: "Product 1", UnitPrice: money.MustFromString("100.00"), Stock: 10},
		{Description: "Product 2", UnitPrice: money.MustFromString("200.00"), Stock: 20},
	}
	for _, p := range demoProducts {
		var existing models.Product
		if err := conn.Where("description = ?", p.Description).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := conn.Create(&p).Error; err != nil {
				log.Printf("seed: create product %q: %v", p.Description, err)
			}
		}
	}
}
