package Controllers_test

import (
	"net/http"
	"testing"

	"Lecturas/Models"
)

func TestSeleccionarPeriodo(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")

	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	resp := doJSON(t, app, "GET", "/api/periodo", nil, jwt, sess)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if ano, _ := body["ano"].(float64); ano != 2025 {
		t.Fatalf("expected ano 2025, got %v", body["ano"])
	}
	if mes, _ := body["mes"].(float64); mes != 3 {
		t.Fatalf("expected mes 3, got %v", body["mes"])
	}
	if body["periodo"] != "Marzo 2025" {
		t.Fatalf("expected periodo 'Marzo 2025', got %v", body["periodo"])
	}
}

func TestSeleccionarPeriodo_Invalido(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")

	cases := []map[string]int{
		{"ano": 2030, "mes": 3},
		{"ano": 2025, "mes": 0},
		{"ano": 2025, "mes": 13},
	}
	for _, payload := range cases {
		resp := doJSON(t, app, "POST", "/api/periodo", payload, jwt)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("payload %v: expected 422, got %d", payload, resp.StatusCode)
		}
	}
}

func TestGetPeriodo_SinSeleccion(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")

	resp := doJSON(t, app, "GET", "/api/periodo", nil, jwt)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["periodo"] != "No seleccionado" {
		t.Fatalf("expected 'No seleccionado', got %v", body["periodo"])
	}
}

func TestMutacionSinAutenticacion(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/lecturas/1", map[string]interface{}{"lectura_actual": 150})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", "/api/rutas/cerrar", map[string]string{"ruta": "R01"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPermisosInsuficientes(t *testing.T) {
	app := setupApp(t)
	createUser(t, "pedro", Models.PermissionOperador, true)
	jwt := login(t, app, "pedro")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	// Operators cannot toggle route state
	resp := doJSON(t, app, "POST", "/api/rutas/cerrar", map[string]string{"ruta": "R01"}, jwt, sess)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
