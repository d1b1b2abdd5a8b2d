package pgsession

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAuthMiddlewareNoCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, newFakeDBTX())

	router := gin.New()
	router.Use(AuthMiddleware(MiddlewareConfig{Store: store}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/account/login" {
		t.Errorf("Location = %q, want /account/login", loc)
	}
}

func TestAuthMiddlewareEmptyCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, newFakeDBTX())

	router := gin.New()
	router.Use(AuthMiddleware(MiddlewareConfig{Store: store}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: ""})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
}

func TestAuthMiddlewareUnknownSessionKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, newFakeDBTX())

	router := gin.New()
	router.Use(AuthMiddleware(MiddlewareConfig{Store: store}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "does-not-exist"})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
}

func TestAuthMiddlewareValidSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newFakeDBTX()
	store := newTestStore(t, db)

	if err := store.Put(context.Background(), "sess-valid", "hello", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	var stored *RawSession
	router := gin.New()
	router.Use(AuthMiddleware(MiddlewareConfig{Store: store}))
	router.GET("/test", func(c *gin.Context) {
		stored = c.MustGet("session").(*RawSession)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "sess-valid"})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if stored == nil || stored.SessionKey != "sess-valid" {
		t.Errorf("context session = %+v, want SessionKey sess-valid", stored)
	}
}

func TestAuthMiddlewareCustomConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, newFakeDBTX())

	t.Run("custom login redirect URL", func(t *testing.T) {
		router := gin.New()
		router.Use(AuthMiddleware(MiddlewareConfig{Store: store, LoginRedirectURL: "/custom-login"}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		if loc := w.Header().Get("Location"); loc != "/custom-login" {
			t.Errorf("Location = %q, want /custom-login", loc)
		}
	})

	t.Run("custom session key", func(t *testing.T) {
		db := newFakeDBTX()
		store := newTestStore(t, db)
		if err := store.Put(context.Background(), "sess-custom", "hello", time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("Put() unexpected error: %v", err)
		}

		var found bool
		router := gin.New()
		router.Use(AuthMiddleware(MiddlewareConfig{Store: store, SessionKey: "my_session"}))
		router.GET("/test", func(c *gin.Context) {
			_, found = c.Get("my_session")
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: "sess-custom"})
		router.ServeHTTP(w, req)

		if !found {
			t.Error("expected session stored under custom key")
		}
	})

	t.Run("custom error handler", func(t *testing.T) {
		var capturedErr error
		router := gin.New()
		router.Use(AuthMiddleware(MiddlewareConfig{
			Store: store,
			OnError: func(c *gin.Context, err error) {
				capturedErr = err
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			},
		}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		if capturedErr == nil {
			t.Error("expected OnError to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

func TestAuthMiddlewareAbortsOnFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, newFakeDBTX())

	nextCalled := false
	router := gin.New()
	router.Use(AuthMiddleware(MiddlewareConfig{Store: store}))
	router.GET("/test", func(c *gin.Context) {
		nextCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	if nextCalled {
		t.Error("expected handler chain to stop after auth failure")
	}
}
