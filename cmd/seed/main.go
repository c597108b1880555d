package main

import (
	"context"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shopfront/internal/config"
	"shopfront/internal/db"
	"shopfront/internal/model"
	"shopfront/internal/repository"
)

type seedProduct struct {
	name        string
	description string
	price       string
	inStock     int
	imagePath   string
	categoryID  uint
}

var seedCategories = []string{"Beauty", "Laptops", "Motorcycles", "Vehicles"}

// Seed products reference CDN images by absolute URL, which is the
// EXTERNAL image state's entry point: no local file is owned for them.
var seedProducts = []seedProduct{
	{"Essence Mascara Lash Princess", "The Essence Mascara Lash Princess is a popular mascara known for its volumizing and lengthening effects. Achieve dramatic lashes with this long-lasting and cruelty-free formula.", "9.99", 99, "https://cdn.dummyjson.com/product-images/beauty/essence-mascara-lash-princess/1.webp", 1},
	{"Eyeshadow Palette with Mirror", "The Eyeshadow Palette with Mirror offers a versatile range of eyeshadow shades for creating stunning eye looks. With a built-in mirror, it's convenient for on-the-go makeup application.", "19.99", 34, "https://cdn.dummyjson.com/product-images/beauty/eyeshadow-palette-with-mirror/1.webp", 1},
	{"Powder Canister", "The Powder Canister is a finely milled setting powder designed to set makeup and control shine. With a lightweight and translucent formula, it provides a smooth and matte finish.", "14.99", 89, "https://cdn.dummyjson.com/product-images/beauty/powder-canister/1.webp", 1},
	{"Apple MacBook Pro 14 Inch Space Grey", "The MacBook Pro 14 Inch in Space Grey is a powerful and sleek laptop, featuring Apple's M1 Pro chip for exceptional performance and a stunning Retina display.", "1999.99", 24, "https://cdn.dummyjson.com/product-images/laptops/apple-macbook-pro-14-inch-space-grey/1.webp", 2},
	{"Asus Zenbook Pro Dual Screen Laptop", "The Asus Zenbook Pro Dual Screen Laptop is a high-performance device with dual screens, providing productivity and versatility for creative professionals.", "1799.99", 45, "https://cdn.dummyjson.com/product-images/laptops/asus-zenbook-pro-dual-screen-laptop/1.webp", 2},
	{"Huawei Matebook X Pro", "The Huawei Matebook X Pro is a slim and stylish laptop with a high-resolution touchscreen display, offering a premium experience for users on the go.", "1399.99", 75, "https://cdn.dummyjson.com/product-images/laptops/huawei-matebook-x-pro/1.webp", 2},
	{"Generic Motorcycle", "The Generic Motorcycle is a versatile and reliable bike suitable for various riding preferences. With a balanced design, it provides a comfortable and efficient riding experience.", "3999.99", 34, "https://cdn.dummyjson.com/product-images/motorcycle/generic-motorcycle/1.webp", 3},
	{"Kawasaki Z800", "The Kawasaki Z800 is a powerful and agile sportbike known for its striking design and performance. It's equipped with advanced features, making it a favorite among motorcycle enthusiasts.", "8999.99", 52, "https://cdn.dummyjson.com/product-images/motorcycle/kawasaki-z800/1.webp", 3},
	{"MotoGP CI.H1", "The MotoGP CI.H1 is a high-performance motorcycle inspired by MotoGP racing technology. It offers cutting-edge features and precision engineering for an exhilarating riding experience.", "14999.99", 10, "https://cdn.dummyjson.com/product-images/motorcycle/motogp-ci.h1/1.webp", 3},
	{"300 Touring", "The 300 Touring is a stylish and comfortable sedan, known for its luxurious features and smooth performance.", "28999.99", 54, "https://cdn.dummyjson.com/product-images/vehicle/300-touring/1.webp", 4},
	{"Charger SXT RWD", "The Charger SXT RWD is a powerful and sporty rear-wheel-drive sedan, offering a blend of performance and practicality.", "32999.99", 57, "https://cdn.dummyjson.com/product-images/vehicle/charger-sxt-rwd/1.webp", 4},
	{"Dodge Hornet GT Plus", "The Dodge Hornet GT Plus is a compact and agile hatchback, perfect for urban driving with a touch of sportiness.", "24999.99", 82, "https://cdn.dummyjson.com/product-images/vehicle/dodge-hornet-gt-plus/1.webp", 4},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Category{}, &model.Product{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	if err := seedAdmin(ctx, gormDB); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	if err := seedCatalog(ctx, gormDB); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	log.Println("Seeding completed")
}

func seedAdmin(ctx context.Context, gormDB *gorm.DB) error {
	users := repository.NewUserRepository(gormDB)

	email := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	if _, err := users.FindByEmail(ctx, email); err == nil {
		log.Printf("Admin user %s already exists, skipping", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(envOr("SEED_ADMIN_PASSWORD", "password")), 10)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("Created admin user %s", email)
	return nil
}

func seedCatalog(ctx context.Context, gormDB *gorm.DB) error {
	categories := repository.NewCategoryRepository(gormDB)
	products := repository.NewProductRepository(gormDB)

	if existing, err := categories.List(ctx); err != nil {
		return err
	} else if len(existing) > 0 {
		log.Printf("Catalog already seeded (%d categories), skipping", len(existing))
		return nil
	}

	for _, name := range seedCategories {
		if err := categories.Create(ctx, &model.Category{CategoryName: name}); err != nil {
			return err
		}
	}
	log.Printf("Created %d categories", len(seedCategories))

	for _, sp := range seedProducts {
		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			return err
		}
		product := &model.Product{
			ProductName: sp.name,
			Description: sp.description,
			Price:       price,
			InStock:     sp.inStock,
			ImagePath:   sp.imagePath,
			CategoryID:  sp.categoryID,
		}
		if err := products.Create(ctx, product); err != nil {
			return err
		}
	}
	log.Printf("Created %d products", len(seedProducts))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
