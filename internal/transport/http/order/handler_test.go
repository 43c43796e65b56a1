package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sello-app/sello/internal/config"
	"github.com/sello-app/sello/internal/qr"
	service "github.com/sello-app/sello/internal/service/order"
	store "github.com/sello-app/sello/internal/store/order"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	svc := service.NewService(service.Params{
		Store:   store.NewStore(),
		Encoder: qr.Encode,
		Config: config.Config{
			PublicURL: "http://localhost:3000",
			QR: config.QR{
				Level:      "medium",
				Size:       128,
				Margin:     2,
				Foreground: "#000000",
				Background: "#FFFFFF",
			},
			Cache: config.Cache{DefaultTTL: time.Minute},
		},
		Logger: zap.NewNop(),
	})

	e := echo.New()
	Register(e, NewHandler(svc))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type orderBody struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	ConfirmedAt string `json:"confirmedAt"`
	ConfirmURL  string `json:"confirmUrl"`
}

func TestCreateOrderEndpoint(t *testing.T) {
	e := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/orders", `{"description":"Entrega de credencial"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Order orderBody `json:"order"`
			QR    struct {
				Content     string `json:"content"`
				ImageBase64 string `json:"imageBase64"`
				MimeType    string `json:"mimeType"`
			} `json:"qr"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success=true")
	}
	if resp.Data.Order.Status != "pending" {
		t.Fatalf("expected pending, got %s", resp.Data.Order.Status)
	}
	if want := "http://localhost:3000/orders/" + resp.Data.Order.ID + "/confirm"; resp.Data.Order.ConfirmURL != want {
		t.Fatalf("expected confirmUrl %s, got %s", want, resp.Data.Order.ConfirmURL)
	}
	if resp.Data.QR.ImageBase64 == "" || resp.Data.QR.MimeType != "image/png" {
		t.Fatalf("expected a non-empty png payload")
	}
	if resp.Data.QR.Content != resp.Data.Order.ConfirmURL {
		t.Fatalf("QR content must match the confirmation URL")
	}
	if resp.Data.Order.ConfirmedAt != "" {
		t.Fatalf("pending order must not expose confirmedAt")
	}
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	e := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{}`},
		{"empty description", `{"description":""}`},
		{"non-string description", `{"description":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/orders", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	rec := doJSON(e, http.MethodGet, "/orders", "")
	var resp struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Data.Total != 0 {
		t.Fatalf("rejected creations must not store orders, found %d", resp.Data.Total)
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	e := newTestRouter(t)

	doJSON(e, http.MethodPost, "/orders", `{"description":"uno"}`)
	doJSON(e, http.MethodPost, "/orders", `{"description":"dos"}`)

	rec := doJSON(e, http.MethodGet, "/orders", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Total int         `json:"total"`
			Data  []orderBody `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Data.Total != 2 || len(resp.Data.Data) != 2 {
		t.Fatalf("expected 2 orders, got total=%d len=%d", resp.Data.Total, len(resp.Data.Data))
	}
	if resp.Data.Data[0].Description != "uno" || resp.Data.Data[1].Description != "dos" {
		t.Fatalf("listing lost insertion order")
	}
}

func TestConfirmOrderEndpoint(t *testing.T) {
	e := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/orders", `{"description":"confirmame"}`)
	var created struct {
		Data struct {
			Order orderBody `json:"order"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	confirmPath := "/orders/" + created.Data.Order.ID + "/confirm"

	rec = doJSON(e, http.MethodGet, confirmPath, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var confirmed struct {
		Data struct {
			Order            orderBody `json:"order"`
			AlreadyConfirmed bool      `json:"alreadyConfirmed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if confirmed.Data.AlreadyConfirmed {
		t.Fatalf("first confirmation must not report alreadyConfirmed")
	}
	if confirmed.Data.Order.Status != "confirmed" || confirmed.Data.Order.ConfirmedAt == "" {
		t.Fatalf("expected confirmed order with timestamp, got %+v", confirmed.Data.Order)
	}

	rec = doJSON(e, http.MethodGet, confirmPath, "")
	var repeated struct {
		Data struct {
			Order            orderBody `json:"order"`
			AlreadyConfirmed bool      `json:"alreadyConfirmed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &repeated); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !repeated.Data.AlreadyConfirmed {
		t.Fatalf("second confirmation must report alreadyConfirmed")
	}
	if repeated.Data.Order.ConfirmedAt != confirmed.Data.Order.ConfirmedAt {
		t.Fatalf("confirmedAt changed on re-confirmation")
	}
}

func TestConfirmUnknownOrderEndpoint(t *testing.T) {
	e := newTestRouter(t)

	rec := doJSON(e, http.MethodGet, "/orders/b7e1fb3c-0000-4000-8000-000000000000/confirm", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Success || resp.Error.Kind != "not_found" {
		t.Fatalf("expected structured not_found error, got %s", rec.Body.String())
	}
}
