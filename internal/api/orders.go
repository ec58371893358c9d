package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/popodpiske/checkout-gateway/internal/models"
)

type orderIDRequest struct {
	OrderID int `json:"orderId"`
}

// CreateOrder создаёт заказ и возвращает ссылку на страницу оплаты.
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.PaymentURLResponse, error) {
	const op = "api.CreateOrder"
	var resp models.PaymentURLResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// ListOrders возвращает заказы пользователя.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	const op = "api.ListOrders"
	orders := []models.Order{}
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// AddPayment привязывает новый способ оплаты к заказу и возвращает ссылку на оплату.
func (c *Client) AddPayment(ctx context.Context, orderID int) (*models.PaymentURLResponse, error) {
	const op = "api.AddPayment"
	var resp models.PaymentURLResponse
	if err := c.do(ctx, http.MethodPost, "/orders/add-payment", orderIDRequest{OrderID: orderID}, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// ConfirmSuccess сообщает основному API об успешной оплате заказа.
func (c *Client) ConfirmSuccess(ctx context.Context, orderID int) error {
	const op = "api.ConfirmSuccess"
	if err := c.do(ctx, http.MethodPost, "/orders/success", orderIDRequest{OrderID: orderID}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkLinkUsed помечает платёжную ссылку использованной.
func (c *Client) MarkLinkUsed(ctx context.Context, linkUUID string) error {
	const op = "api.MarkLinkUsed"
	path := "/orders/" + url.PathEscape(linkUUID) + "/mark-used"
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CancelOrder отменяет заказ. Идентификатор передаётся в теле запроса.
func (c *Client) CancelOrder(ctx context.Context, orderID int) error {
	const op = "api.CancelOrder"
	if err := c.do(ctx, http.MethodDelete, "/orders", orderIDRequest{OrderID: orderID}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
