package api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// startBackend serves a fiber app on a loopback listener so the client's
// real HTTP path is exercised, and returns the site base URL.
func startBackend(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func newTestClient(t *testing.T, app *fiber.App) *Client {
	t.Helper()
	return New(startBackend(t, app), 2*time.Second, zap.NewNop())
}

func TestCategoriesBareArray(t *testing.T) {
	app := fiber.New()
	app.Get("/api/categories", func(c *fiber.Ctx) error {
		if c.Get("X-Request-ID") == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "missing request id"})
		}
		return c.JSON([]fiber.Map{{"id": 1, "name": "Горячие блюда"}, {"id": 2, "name": "Чай"}})
	})
	client := newTestClient(t, app)

	cats, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Горячие блюда" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestDishesEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/api/dishes", func(c *fiber.Ctx) error {
		if c.Query("limit") != "20" || c.Query("offset") != "40" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad paging"})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    []fiber.Map{{"id": 7, "name": "Плов", "price": 350, "category_id": 1}},
		})
	})
	client := newTestClient(t, app)

	dishes, err := client.Dishes(context.Background(), DishFilter{Limit: 20, Offset: 40})
	if err != nil {
		t.Fatalf("dishes failed: %v", err)
	}
	if len(dishes) != 1 || dishes[0].ID != 7 {
		t.Fatalf("unexpected dishes: %+v", dishes)
	}
	if !dishes[0].Price.Equal(priceOf(t, "350")) {
		t.Fatalf("price not decoded: %s", dishes[0].Price)
	}
}

func TestServerErrorMessageExtraction(t *testing.T) {
	app := fiber.New()
	app.Get("/api/categories", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "table_number is required"})
	})
	app.Get("/api/dishes", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusInternalServerError).SendString("<html>oops</html>")
	})
	client := newTestClient(t, app)

	_, err := client.Categories(context.Background())
	if err == nil || err.Error() != "table_number is required" {
		t.Fatalf("expected payload message, got %v", err)
	}

	_, err = client.Dishes(context.Background(), DishFilter{})
	if err == nil || err.Error() != "HTTP 500" {
		t.Fatalf("expected generic status message for non-JSON body, got %v", err)
	}
	apiErr, ok := err.(*Error)
	if !ok || apiErr.Status != fiber.StatusInternalServerError {
		t.Fatalf("expected *Error with status 500, got %#v", err)
	}
}

func TestTransportFailure(t *testing.T) {
	// grab a port and close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client := New("http://"+addr, time.Second, zap.NewNop())
	_, err = client.Categories(context.Background())
	if err == nil || err.Error() != "cannot reach server" {
		t.Fatalf("expected connectivity message, got %v", err)
	}
}

func TestTimeoutMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/api/categories", func(c *fiber.Ctx) error {
		time.Sleep(500 * time.Millisecond)
		return c.JSON([]fiber.Map{})
	})
	client := New(startBackend(t, app), 50*time.Millisecond, zap.NewNop())

	_, err := client.Categories(context.Background())
	if err == nil || err.Error() != "request timed out" {
		t.Fatalf("expected timeout message, got %v", err)
	}
}

func TestCreateOrderAckShapes(t *testing.T) {
	bodies := []struct {
		resp   fiber.Map
		wantID int
	}{
		{fiber.Map{"order_id": 12}, 12},
		{fiber.Map{"id": 9}, 9},
		{fiber.Map{"success": true}, 0},
	}
	for _, tc := range bodies {
		resp := tc.resp
		app := fiber.New()
		app.Post("/api/orders", func(c *fiber.Ctx) error {
			var req OrderRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
			}
			if req.TableNumber == "" || len(req.Items) == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "items must be a non-empty list"})
			}
			return c.JSON(resp)
		})
		client := newTestClient(t, app)

		id, err := client.CreateOrder(context.Background(), OrderRequest{
			TableNumber: "0",
			Items:       []OrderItem{{DishID: 1, Quantity: 2}},
		})
		if err != nil {
			t.Fatalf("create order failed for %v: %v", resp, err)
		}
		if id != tc.wantID {
			t.Fatalf("expected order id %d for %v, got %d", tc.wantID, resp, id)
		}
	}
}

func TestCreateOrderUnrecognizedAck(t *testing.T) {
	app := fiber.New()
	app.Post("/api/orders", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"weird": true})
	})
	client := newTestClient(t, app)

	_, err := client.CreateOrder(context.Background(), OrderRequest{
		TableNumber: "0",
		Items:       []OrderItem{{DishID: 1, Quantity: 1}},
	})
	if err != ErrUnrecognizedShape {
		t.Fatalf("expected ErrUnrecognizedShape, got %v", err)
	}
}

func TestFindOrCreateGuest(t *testing.T) {
	app := fiber.New()
	app.Post("/api/guests/find_or_create", func(c *fiber.Ctx) error {
		var req struct {
			Phone string `json:"phone"`
			Name  string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil || req.Phone == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "phone required"})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"id": 33, "phone": req.Phone, "name": req.Name},
		})
	})
	client := newTestClient(t, app)

	g, err := client.FindOrCreateGuest(context.Background(), "+79001234567", "Амина")
	if err != nil {
		t.Fatalf("find_or_create failed: %v", err)
	}
	if g.ID != 33 || g.Phone != "+79001234567" || g.Name != "Амина" {
		t.Fatalf("unexpected guest: %+v", g)
	}
}

func TestChatReplyShapes(t *testing.T) {
	app := fiber.New()
	app.Post("/api/ai/chat", func(c *fiber.Ctx) error {
		var req struct {
			Message string `json:"message"`
			TopK    int    `json:"top_k"`
		}
		if err := c.BodyParser(&req); err != nil || req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Field 'message' is required"})
		}
		if req.Message == "old" {
			return c.JSON(fiber.Map{
				"reply":       "Попробуйте наш плов",
				"suggestions": []string{"Плов", "Лагман"},
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"message": "Рекомендую суп",
				"suggestions": []fiber.Map{
					{"id": 4, "name": "Шурпа"},
					{"dish_id": 2, "title": "Лагман"},
				},
			},
		})
	})
	client := newTestClient(t, app)

	r, err := client.Chat(context.Background(), "что поесть?", 3)
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if r.Message != "Рекомендую суп" || len(r.Suggestions) != 2 {
		t.Fatalf("unexpected reply: %+v", r)
	}
	if r.Suggestions[0].DishID != 4 || r.Suggestions[1].Name != "Лагман" {
		t.Fatalf("suggestions not normalized: %+v", r.Suggestions)
	}

	r, err = client.Chat(context.Background(), "old", 0)
	if err != nil {
		t.Fatalf("chat (old shape) failed: %v", err)
	}
	if r.Message != "Попробуйте наш плов" || len(r.Suggestions) != 2 || r.Suggestions[0].Name != "Плов" {
		t.Fatalf("old reply shape not handled: %+v", r)
	}
}

func TestOrdersAdminEndpoints(t *testing.T) {
	app := fiber.New()
	app.Get("/api/orders", func(c *fiber.Ctx) error {
		return c.JSON([]fiber.Map{
			{"id": 1, "table_number": "3", "status": "pending",
				"items": []fiber.Map{{"dish_id": 7, "quantity": 2}}},
		})
	})
	app.Put("/api/orders/1/status", func(c *fiber.Ctx) error {
		var req struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil || req.Status == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Field 'status' is required"})
		}
		return c.JSON(fiber.Map{"ok": true, "order_id": 1, "new_status": req.Status})
	})
	app.Delete("/api/orders/1", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	client := newTestClient(t, app)

	orders, err := client.Orders(context.Background(), "")
	if err != nil {
		t.Fatalf("orders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].Items[0].DishID != 7 {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	if err := client.UpdateOrderStatus(context.Background(), 1, "in_progress"); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if err := client.DeleteOrder(context.Background(), 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
