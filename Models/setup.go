package Models

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and migrates the schema. MySQL is used when
// DB_DSN is set (e.g. "user:pass@tcp(host:3306)/lecturas?parseTime=true"),
// otherwise a local sqlite file.
func Connect() {
	var err error
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "database.db"
		}
		DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	seedAdmin(DB)
}

// Migrate creates the schema in dependency order.
func Migrate(db *gorm.DB) error {
	// The join table carries its own registration timestamp.
	if err := db.SetupJoinTable(&Lectura{}, "Novedades", &NovedadLectura{}); err != nil {
		return err
	}

	// 1. Models with no dependencies
	if err := db.AutoMigrate(
		&User{},
		&Cliente{},
		&Novedad{},
	); err != nil {
		return err
	}

	// 2. Models with simple foreign keys
	if err := db.AutoMigrate(
		&Operador{}, // depends on User
	); err != nil {
		return err
	}

	// 3. Models relating to multiple others
	return db.AutoMigrate(
		&Lectura{}, // depends on Cliente, Operador, Novedad
		&Importacion{},
	)
}

// seedAdmin creates the initial admin login when the users table is empty.
func seedAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	passwordByte, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Failed to hash admin password:", err)
		return
	}

	admin := User{
		Username:   "admin",
		Name:       "Administrador",
		Password:   passwordByte,
		Permission: PermissionAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Println("Failed to seed admin user:", err)
	}
}
