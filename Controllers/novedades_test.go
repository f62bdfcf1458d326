package Controllers_test

import (
	"fmt"
	"net/http"
	"sort"
	"testing"

	"Lecturas/Models"
)

func crearNovedad(t *testing.T, descripcion string) Models.Novedad {
	t.Helper()
	novedad := Models.Novedad{Descripcion: descripcion}
	if err := Models.DB.Create(&novedad).Error; err != nil {
		t.Fatalf("failed to create novedad: %v", err)
	}
	return novedad
}

func asignaciones(t *testing.T, lecturaID uint) []uint {
	t.Helper()
	var filas []Models.NovedadLectura
	if err := Models.DB.Where("lectura_id = ?", lecturaID).Find(&filas).Error; err != nil {
		t.Fatalf("failed to load assignments: %v", err)
	}
	ids := make([]uint, 0, len(filas))
	for _, fila := range filas {
		ids = append(ids, fila.NovedadID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestSetNovedades_Reemplaza(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	lectura := crearLectura(t, "R01", 2025, 3, 1, 100, true)
	a := crearNovedad(t, "medidor inaccesible")
	b := crearNovedad(t, "vidrio roto")
	c := crearNovedad(t, "perro suelto")

	url := fmt.Sprintf("/api/lecturas/%d/novedades", lectura.ID)

	resp := doJSON(t, app, "PUT", url,
		map[string]interface{}{"novedades": []uint{a.ID, b.ID}, "novedad_libre": "sin acceso"}, jwt, sess)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := asignaciones(t, lectura.ID)
	if len(got) != 2 || got[0] != a.ID || got[1] != b.ID {
		t.Fatalf("expected assignments {a,b}, got %v", got)
	}

	// Replace, not merge
	resp = doJSON(t, app, "PUT", url,
		map[string]interface{}{"novedades": []uint{b.ID, c.ID}}, jwt, sess)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got = asignaciones(t, lectura.ID)
	if len(got) != 2 || got[0] != b.ID || got[1] != c.ID {
		t.Fatalf("expected assignments {b,c}, got %v", got)
	}

	// Free text was replaced by its absence (empty string)
	var saved Models.Lectura
	if err := Models.DB.First(&saved, lectura.ID).Error; err != nil {
		t.Fatalf("failed to reload lectura: %v", err)
	}
	if saved.NovedadLibre != "" {
		t.Fatalf("expected empty note after replacement, got %q", saved.NovedadLibre)
	}
}

func TestSetNovedades_Idempotente(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	lectura := crearLectura(t, "R01", 2025, 3, 1, 100, true)
	a := crearNovedad(t, "medidor inaccesible")
	b := crearNovedad(t, "vidrio roto")

	url := fmt.Sprintf("/api/lecturas/%d/novedades", lectura.ID)
	payload := map[string]interface{}{"novedades": []uint{a.ID, b.ID}, "novedad_libre": "nota"}

	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, "PUT", url, payload, jwt, sess)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	got := asignaciones(t, lectura.ID)
	if len(got) != 2 || got[0] != a.ID || got[1] != b.ID {
		t.Fatalf("expected assignments {a,b} after repeated call, got %v", got)
	}
}

func TestSetNovedades_Vacia(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	lectura := crearLectura(t, "R01", 2025, 3, 1, 100, true)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/lecturas/%d/novedades", lectura.ID),
		map[string]interface{}{"novedades": []uint{}, "novedad_libre": ""}, jwt, sess)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestSetNovedades_RutaCerrada(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	lectura := crearLectura(t, "R01", 2025, 3, 1, 100, false)
	novedad := crearNovedad(t, "medidor inaccesible")

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/lecturas/%d/novedades", lectura.ID),
		map[string]interface{}{"novedades": []uint{novedad.ID}}, jwt, sess)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if got := asignaciones(t, lectura.ID); len(got) != 0 {
		t.Fatalf("expected zero writes, got assignments %v", got)
	}
}

func TestSetNovedades_NovedadInexistente(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	lectura := crearLectura(t, "R01", 2025, 3, 1, 100, true)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/lecturas/%d/novedades", lectura.ID),
		map[string]interface{}{"novedades": []uint{9999}}, jwt, sess)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteNovedad_Cascada(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")
	sess := seleccionarPeriodo(t, app, 2025, 3, jwt)

	primera := crearLectura(t, "R01", 2025, 3, 1, 100, true)
	segunda := crearLectura(t, "R01", 2025, 3, 2, 200, true)
	novedad := crearNovedad(t, "medidor inaccesible")
	otra := crearNovedad(t, "vidrio roto")

	doJSON(t, app, "PUT", fmt.Sprintf("/api/lecturas/%d/novedades", primera.ID),
		map[string]interface{}{"novedades": []uint{novedad.ID, otra.ID}, "novedad_libre": "nota uno"}, jwt, sess)
	doJSON(t, app, "PUT", fmt.Sprintf("/api/lecturas/%d/novedades", segunda.ID),
		map[string]interface{}{"novedades": []uint{novedad.ID}, "novedad_libre": "nota dos"}, jwt, sess)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/novedades/%d", novedad.ID), nil, jwt)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Exactly the deleted type's assignments are gone
	if got := asignaciones(t, primera.ID); len(got) != 1 || got[0] != otra.ID {
		t.Fatalf("expected only the other assignment to survive, got %v", got)
	}
	if got := asignaciones(t, segunda.ID); len(got) != 0 {
		t.Fatalf("expected no assignments left, got %v", got)
	}

	// Notes stay put
	var saved Models.Lectura
	if err := Models.DB.First(&saved, primera.ID).Error; err != nil {
		t.Fatalf("failed to reload lectura: %v", err)
	}
	if saved.NovedadLibre != "nota uno" {
		t.Fatalf("expected note untouched, got %q", saved.NovedadLibre)
	}
}

func TestCreateNovedad_DescripcionInvalida(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")

	for _, descripcion := range []string{"", "   ", " ab "} {
		resp := doJSON(t, app, "POST", "/api/novedades",
			map[string]string{"descripcion": descripcion}, jwt)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("descripcion %q: expected 422, got %d", descripcion, resp.StatusCode)
		}
	}
}

func TestCreateNovedad_RecortaEspacios(t *testing.T) {
	app := setupApp(t)
	createUser(t, "maria", Models.PermissionAdmin, true)
	jwt := login(t, app, "maria")

	resp := doJSON(t, app, "POST", "/api/novedades",
		map[string]string{"descripcion": "  medidor inaccesible  "}, jwt)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var novedad Models.Novedad
	if err := Models.DB.First(&novedad).Error; err != nil {
		t.Fatalf("failed to load novedad: %v", err)
	}
	if novedad.Descripcion != "medidor inaccesible" {
		t.Fatalf("expected trimmed description, got %q", novedad.Descripcion)
	}
}
