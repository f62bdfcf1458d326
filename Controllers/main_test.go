package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Lecturas/FiberConfig"
	"Lecturas/Models"
)

// setupApp points Models.DB at a fresh in-memory database and builds the
// API with the production route table.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	Models.DB = db

	app := fiber.New()
	FiberConfig.SetupRoutes(app)
	return app
}

// createUser inserts a login, optionally with its operador record.
func createUser(t *testing.T, username string, permission int, conOperador bool) Models.User {
	t.Helper()

	passwordByte, err := bcrypt.GenerateFromPassword([]byte("secreto1"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := Models.User{
		Username:   username,
		Name:       username,
		Password:   passwordByte,
		Permission: permission,
	}
	if err := Models.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if conOperador {
		operador := Models.Operador{UserID: user.Id}
		if err := Models.DB.Create(&operador).Error; err != nil {
			t.Fatalf("failed to create operador: %v", err)
		}
	}
	return user
}

// login performs the real login flow and returns the jwt cookie.
func login(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/login", map[string]string{
		"username": username,
		"password": "secreto1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "jwt" {
			return cookie
		}
	}
	t.Fatal("login response has no jwt cookie")
	return nil
}

// seleccionarPeriodo selects the period and returns the session cookie.
func seleccionarPeriodo(t *testing.T, app *fiber.App, ano, mes int, cookies ...*http.Cookie) *http.Cookie {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/periodo", map[string]int{"ano": ano, "mes": mes}, cookies...)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("period selection failed with status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_id" {
			return cookie
		}
	}
	t.Fatal("period selection response has no session cookie")
	return nil
}

func doJSON(t *testing.T, app *fiber.App, method, url string, body interface{}, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

// crearLectura seeds one lectura with its cliente.
func crearLectura(t *testing.T, ruta string, ano, mes, orden, anterior int, abierta bool) Models.Lectura {
	t.Helper()

	cliente := Models.Cliente{Denominacion: "Cliente " + ruta, Domicilio: "Calle 1"}
	if err := Models.DB.Create(&cliente).Error; err != nil {
		t.Fatalf("failed to create cliente: %v", err)
	}
	lectura := Models.Lectura{
		AnoConsumo:      ano,
		MesConsumo:      mes,
		ClienteID:       cliente.ID,
		Ruta:            ruta,
		Area:            "Centro",
		Orden:           orden,
		LecturaAnterior: anterior,
		Abierta:         abierta,
	}
	if err := Models.DB.Create(&lectura).Error; err != nil {
		t.Fatalf("failed to create lectura: %v", err)
	}
	return lectura
}
