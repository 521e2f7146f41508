package database

import (
	"errors"
	"log"
	"zorides_backend/internal/config"
	"zorides_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type demoUser struct {
	Email    string
	Password string
	Name     string
	Age      int
	Gender   string
	State    string
	District string
	Locality string
	Bio      string
}

// 演示账号
var demoUsers = []demoUser{
	{"alice@demo.com", "password123", "Alice Johnson", 24, "female", "Maharashtra", "Mumbai", "Andheri West", "Love music and outdoor events! Always looking for new friends."},
	{"bob@demo.com", "password123", "Bob Smith", 28, "male", "Karnataka", "Bangalore Urban", "Koramangala", "Tech enthusiast and adventure seeker."},
	{"charlie@demo.com", "password123", "Charlie Davis", 22, "male", "Maharashtra", "Pune", "Viman Nagar", "Movie buff and foodie!"},
}

// Seed 创建管理员和演示账号，已存在则跳过
func Seed(db *gorm.DB, cfg *config.AdminConfig) error {
	if cfg.Password != "" {
		err := ensureUser(db, &model.User{
			Email: cfg.Email,
			Name:  "System Administrator",
			Role:  model.RoleAdmin,
		}, cfg.Password)
		if err != nil {
			return err
		}
	} else {
		log.Println("ADMIN_PWD is not set, admin account not created")
	}

	if !cfg.SeedDemo {
		return nil
	}

	for _, u := range demoUsers {
		age := u.Age
		err := ensureUser(db, &model.User{
			Email:    u.Email,
			Name:     u.Name,
			Role:     model.RoleUser,
			Age:      &age,
			Gender:   u.Gender,
			State:    u.State,
			District: u.District,
			Locality: u.Locality,
			Bio:      u.Bio,
		}, u.Password)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureUser(db *gorm.DB, user *model.User, password string) error {
	var existing model.User
	err := db.Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := db.Create(user).Error; err != nil {
		return err
	}
	log.Printf("Seeded user %s", user.Email)
	return nil
}
