// Command demo wires pgsession into a small Gin API, showing how a
// dangerous-signed session token flows from Postgres through
// middleware and into a handler.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"github.com/gosign/dangerous/pgsession"
)

func main() {
	migrate := flag.Bool("migrate", false, "create the session table if it does not exist, then exit")
	flag.Parse()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "django")
	dbPassword := getEnv("DB_PASSWORD", "secret")
	dbName := getEnv("DB_NAME", "djangodb")
	secretKey := getEnv("SESSION_SECRET_KEY", "")

	if secretKey == "" {
		log.Fatal("SESSION_SECRET_KEY environment variable is required")
	}

	connStr := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=disable"

	if *migrate {
		runMigration(connStr)
		return
	}

	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	store, err := pgsession.NewStore(pgsession.StoreConfig{
		DB:                db,
		SecretKey:         []byte(secretKey),
		SessionCookieName: "sessionid",
		MaxAge:            24 * time.Hour,
	})
	if err != nil {
		log.Fatalf("failed to create session store: %v", err)
	}
	log.Println("session store initialized")

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome! This is a public endpoint.",
			"endpoints": gin.H{
				"public":    "/",
				"protected": "/api/dashboard",
				"user":      "/api/user",
			},
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	protected := r.Group("/api")
	protected.Use(pgsession.AuthMiddleware(pgsession.MiddlewareConfig{
		Store:      store,
		SessionKey: "session",
		OnError: func(c *gin.Context, err error) {
			log.Printf("authentication error: %v", err)
			c.JSON(401, gin.H{
				"error":  "authentication required",
				"detail": err.Error(),
			})
		},
	}))

	protected.GET("/dashboard", func(c *gin.Context) {
		raw := c.MustGet("session").(*pgsession.RawSession)

		var payload struct {
			UserID int `json:"_auth_user_id,string"`
		}
		if err := store.Decode(raw.SessionData, &payload); err != nil {
			log.Printf("failed to decode session: %v", err)
			c.JSON(500, gin.H{"error": "failed to decode session data"})
			return
		}

		c.JSON(200, gin.H{
			"message":    "Welcome to your dashboard!",
			"user_id":    payload.UserID,
			"session_id": raw.SessionKey,
			"expires_at": raw.ExpireDate,
		})
	})

	protected.GET("/user", func(c *gin.Context) {
		raw := c.MustGet("session").(*pgsession.RawSession)

		var payload struct {
			UserID int `json:"_auth_user_id,string"`
		}
		if err := store.Decode(raw.SessionData, &payload); err != nil {
			c.JSON(500, gin.H{"error": "failed to decode session"})
			return
		}

		c.JSON(200, gin.H{
			"user_id": payload.UserID,
			"session": gin.H{
				"session_key": raw.SessionKey,
				"expires_at":  raw.ExpireDate,
			},
		})
	})

	protected.POST("/profile", func(c *gin.Context) {
		raw := c.MustGet("session").(*pgsession.RawSession)

		var payload struct {
			UserID int `json:"_auth_user_id,string"`
		}
		if err := store.Decode(raw.SessionData, &payload); err != nil {
			c.JSON(500, gin.H{"error": "failed to decode session"})
			return
		}

		var input struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := c.BindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "invalid input"})
			return
		}

		log.Printf("user %d updating profile: name=%s, email=%s", payload.UserID, input.Name, input.Email)
		c.JSON(200, gin.H{
			"message": "profile updated successfully",
			"user_id": payload.UserID,
		})
	})

	port := getEnv("PORT", "8080")
	log.Printf("server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// runMigration bootstraps the session table using database/sql and the
// lib/pq driver — a synchronous, one-shot admin path that doesn't
// warrant a pool, unlike the pgxpool-backed request path above.
func runMigration(connStr string) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to reach database: %v", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS django_session (
			session_key  varchar(40) PRIMARY KEY,
			session_data text NOT NULL,
			expire_date  timestamptz NOT NULL
		);
		CREATE INDEX IF NOT EXISTS django_session_expire_date_idx ON django_session (expire_date);
	`
	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to create session table: %v", err)
	}
	log.Println("session table ready")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
