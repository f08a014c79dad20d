package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Category is one menu section.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Dish is a menu entry. Price is the display price; at checkout only the
// dish id travels back, the server stays the price authority.
type Dish struct {
	ID          int             `json:"id"`
	CategoryID  int             `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	ImagePath   string          `json:"image_path"`
}

// DishFilter narrows GET /dishes.
type DishFilter struct {
	CategoryID int
	Limit      int
	Offset     int
}

// Guest is the identity record the backend keeps per phone number.
type Guest struct {
	ID      int    `json:"id"`
	GuestID int    `json:"guest_id"`
	Phone   string `json:"phone"`
	Name    string `json:"name"`
}

// OrderItem is one order row on the wire.
type OrderItem struct {
	DishID   int `json:"dish_id"`
	Quantity int `json:"quantity"`
}

// OrderRequest is the checkout payload.
type OrderRequest struct {
	TableNumber string      `json:"table_number"`
	Items       []OrderItem `json:"items"`
	GuestPhone  string      `json:"guest_phone,omitempty"`
	GuestName   string      `json:"guest_name,omitempty"`
}

// Order is the admin-side view of a submitted order.
type Order struct {
	ID          int         `json:"id"`
	TableNumber string      `json:"table_number"`
	Items       []OrderItem `json:"items"`
	GuestPhone  string      `json:"guest_phone"`
	GuestName   string      `json:"guest_name"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
}

// Suggestion is one AI-waiter recommendation. Either field may be empty
// depending on what the model returned.
type Suggestion struct {
	DishID int
	Name   string
}

// ChatReply is the waiter's answer plus its recommendations.
type ChatReply struct {
	Message     string
	Suggestions []Suggestion
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	out := c.do(ctx, "GET", "/categories", nil, nil)
	if !out.Success {
		return nil, out.Err()
	}
	var cats []Category
	if _, err := decodeList(out.Data, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) Dishes(ctx context.Context, f DishFilter) ([]Dish, error) {
	q := url.Values{}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.Itoa(f.CategoryID))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	out := c.do(ctx, "GET", "/dishes", q, nil)
	if !out.Success {
		return nil, out.Err()
	}
	var dishes []Dish
	if _, err := decodeList(out.Data, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (c *Client) DishByID(ctx context.Context, id int) (Dish, error) {
	out := c.do(ctx, "GET", fmt.Sprintf("/dishes/%d", id), nil, nil)
	if !out.Success {
		return Dish{}, out.Err()
	}
	var d Dish
	if err := decodeObject(out.Data, &d); err != nil {
		return Dish{}, err
	}
	return d, nil
}

func (c *Client) SearchDishes(ctx context.Context, query string, categoryID int) ([]Dish, error) {
	q := url.Values{}
	q.Set("q", query)
	if categoryID > 0 {
		q.Set("category", strconv.Itoa(categoryID))
	}
	out := c.do(ctx, "GET", "/dishes/search", q, nil)
	if !out.Success {
		return nil, out.Err()
	}
	var dishes []Dish
	if _, err := decodeList(out.Data, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (c *Client) FindOrCreateGuest(ctx context.Context, phone, name string) (Guest, error) {
	body := map[string]string{"phone": phone, "name": name}
	out := c.do(ctx, "POST", "/guests/find_or_create", nil, body)
	if !out.Success {
		return Guest{}, out.Err()
	}
	var g Guest
	if err := decodeObject(out.Data, &g); err != nil {
		return Guest{}, err
	}
	if g.ID == 0 {
		g.ID = g.GuestID
	}
	return g, nil
}

// CreateOrder submits the order and returns the backend's order id, which
// may be zero when the backend only acknowledged with a success flag.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (int, error) {
	out := c.do(ctx, "POST", "/orders", nil, req)
	if !out.Success {
		return 0, out.Err()
	}
	var ack struct {
		OrderID int  `json:"order_id"`
		ID      int  `json:"id"`
		Success bool `json:"success"`
	}
	if err := decodeObject(out.Data, &ack); err != nil {
		return 0, err
	}
	if ack.OrderID == 0 && ack.ID == 0 && !ack.Success {
		return 0, ErrUnrecognizedShape
	}
	if ack.OrderID != 0 {
		return ack.OrderID, nil
	}
	return ack.ID, nil
}

func (c *Client) Orders(ctx context.Context, status string) ([]Order, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	out := c.do(ctx, "GET", "/orders", q, nil)
	if !out.Success {
		return nil, out.Err()
	}
	var orders []Order
	if _, err := decodeList(out.Data, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int, status string) error {
	body := map[string]string{"status": status}
	out := c.do(ctx, "PUT", fmt.Sprintf("/orders/%d/status", orderID), nil, body)
	return out.Err()
}

func (c *Client) DeleteOrder(ctx context.Context, orderID int) error {
	out := c.do(ctx, "DELETE", fmt.Sprintf("/orders/%d", orderID), nil, nil)
	return out.Err()
}

// Chat asks the AI waiter. topK caps the number of suggestions the
// backend should return; zero lets the backend decide.
func (c *Client) Chat(ctx context.Context, message string, topK int) (ChatReply, error) {
	body := map[string]any{"message": message}
	if topK > 0 {
		body["top_k"] = topK
	}
	out := c.do(ctx, "POST", "/ai/chat", nil, body)
	if !out.Success {
		return ChatReply{}, out.Err()
	}
	return parseChatReply(out.Data), nil
}

// parseChatReply tolerates both reply shapes the backend has shipped:
// {success, data:{message, suggestions}} and the older {reply,
// suggestions}. Suggestions arrive as objects or bare strings.
func parseChatReply(payload json.RawMessage) ChatReply {
	var env struct {
		Data struct {
			Message     string            `json:"message"`
			Suggestions []json.RawMessage `json:"suggestions"`
		} `json:"data"`
		Reply       string            `json:"reply"`
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	_ = json.Unmarshal(payload, &env)

	r := ChatReply{Message: env.Data.Message}
	raws := env.Data.Suggestions
	if r.Message == "" {
		r.Message = env.Reply
	}
	if len(raws) == 0 {
		raws = env.Suggestions
	}

	for _, raw := range raws {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if s != "" {
				r.Suggestions = append(r.Suggestions, Suggestion{Name: s})
			}
			continue
		}
		var obj struct {
			ID     int    `json:"id"`
			DishID int    `json:"dish_id"`
			Name   string `json:"name"`
			Title  string `json:"title"`
		}
		if json.Unmarshal(raw, &obj) != nil {
			continue
		}
		id := obj.ID
		if id == 0 {
			id = obj.DishID
		}
		name := obj.Name
		if name == "" {
			name = obj.Title
		}
		if id != 0 || name != "" {
			r.Suggestions = append(r.Suggestions, Suggestion{DishID: id, Name: name})
		}
	}
	return r
}
