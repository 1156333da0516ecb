package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mercadito/internal/models"
)

type fakeUserStore struct {
	user *models.User
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.user != nil && f.user.UserID == id {
		return f.user, nil
	}
	return nil, nil
}

func authTestRouter(store *fakeUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reservar", OptionalBasicAuth(store, nil), func(c *gin.Context) {
		if v, exists := c.Get("user_id"); exists {
			c.JSON(http.StatusOK, gin.H{"user_id": v})
			return
		}
		c.JSON(http.StatusOK, gin.H{"guest": true})
	})
	return r
}

func testUser() *models.User {
	hash := sha256.Sum256([]byte("secreto"))
	return &models.User{
		UserID:       10,
		Email:        "ana@example.com",
		PasswordHash: fmt.Sprintf("%x", hash),
		IsActive:     true,
	}
}

func TestOptionalAuthGuestPassesThrough(t *testing.T) {
	r := authTestRouter(&fakeUserStore{user: testUser()})

	req, _ := http.NewRequest("POST", "/reservar", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "guest")
	assert.NotContains(t, w.Body.String(), "user_id")
}

func TestOptionalAuthCredentialsLinkUser(t *testing.T) {
	r := authTestRouter(&fakeUserStore{user: testUser()})

	req, _ := http.NewRequest("POST", "/reservar", nil)
	req.SetBasicAuth("ana@example.com", "secreto")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":10`)
}

func TestOptionalAuthBadCredentialsRejected(t *testing.T) {
	r := authTestRouter(&fakeUserStore{user: testUser()})

	req, _ := http.NewRequest("POST", "/reservar", nil)
	req.SetBasicAuth("ana@example.com", "otra-clave")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthInactiveUserRejected(t *testing.T) {
	user := testUser()
	user.IsActive = false
	r := authTestRouter(&fakeUserStore{user: user})

	req, _ := http.NewRequest("POST", "/reservar", nil)
	req.SetBasicAuth("ana@example.com", "secreto")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBasicAuthRequiresCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/perfil", BasicAuth(&fakeUserStore{user: testUser()}, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/perfil", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
