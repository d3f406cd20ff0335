package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"shopbe/internal/config"
	"shopbe/internal/handlers"
	"shopbe/internal/models"
	"shopbe/internal/repositories"
	"shopbe/internal/routes"
	"shopbe/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)

	// === Services ===
	passwordService := services.NewPasswordService()
	tokenService := services.NewTokenService(cfg.Token)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	roleService := services.NewRoleService(roleRepo)
	authService := services.NewAuthService(
		userRepo,
		codeRepo,
		deviceRepo,
		refreshRepo,
		roleService,
		tokenService,
		passwordService,
		emailService,
		cfg.OTP.ExpiresIn,
	)
	googleService := services.NewGoogleService(
		cfg.Google,
		userRepo,
		deviceRepo,
		roleService,
		passwordService,
		authService,
	)

	if err := bootstrap(context.Background(), cfg, roleRepo, userRepo, passwordService); err != nil {
		log.Fatal("Bootstrap failed: ", err)
	}

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService, googleService, cfg.Google.ClientRedirectURI)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, tokenService)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// bootstrap seeds the Client/Admin roles and the admin account from config.
// Safe to run on every start.
func bootstrap(ctx context.Context, cfg *config.Config, roles repositories.RoleRepository, users repositories.UserRepository, passwords services.PasswordService) error {
	if _, err := roles.Ensure(ctx, models.RoleClient); err != nil {
		return err
	}
	adminRole, err := roles.Ensure(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}

	if cfg.Admin.Email == "" {
		return nil
	}
	existing, err := users.GetByEmail(ctx, cfg.Admin.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := passwords.Hash(cfg.Admin.Password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:       cfg.Admin.Email,
		Name:        cfg.Admin.Name,
		PhoneNumber: cfg.Admin.PhoneNumber,
		Password:    hashed,
		RoleID:      adminRole.ID,
	}
	if err := users.Create(ctx, admin); err != nil {
		// a concurrent instance may have just created it
		if repositories.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	log.Printf("[bootstrap] admin account created id=%d", admin.ID)
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
