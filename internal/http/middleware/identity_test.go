package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-medtrack-backend/internal/session"
)

func TestIdentity_SetsContext(t *testing.T) {
	r := gin.New()
	r.Use(Identity(session.HeaderProvider{DefaultUser: "demo-user"}))

	var uid string
	var id session.Identity
	r.GET("/", func(c *gin.Context) {
		uid = c.GetString("userID")
		id = IdentityFrom(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(session.HeaderUserID, "u7")
	req.Header.Set(session.HeaderRoles, "caretaker")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if uid != "u7" {
		t.Fatalf("userID = %q; want u7", uid)
	}
	if !id.HasRole(session.RoleCaretaker) {
		t.Fatalf("identity roles = %v; want caretaker", id.Roles)
	}
}

func TestIdentityFrom_Zero(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if id := IdentityFrom(c); id.UserID != "" || len(id.Roles) != 0 {
		t.Fatalf("zero identity = %+v", id)
	}
}
