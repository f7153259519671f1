package controllers

import (
	"errors"
	"net/http"

	"food-storefront/middlewares"
	"food-storefront/models"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

// currentAccount returns the logged-in account, or nil for guests.
func currentAccount(c *gin.Context, accounts *services.Accounts) (*models.UserAccount, error) {
	id := middlewares.UserID(c)
	if id == "" {
		return nil, nil
	}
	acct, err := accounts.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrNotLoggedIn) {
		return nil, nil
	}
	return acct, err
}

type CartController struct {
	cart     *services.Cart
	accounts *services.Accounts
}

func NewCartController(cart *services.Cart, accounts *services.Accounts) *CartController {
	return &CartController{cart: cart, accounts: accounts}
}

func (cc *CartController) Get(c *gin.Context) {
	s, err := cc.cart.Get(c.Request.Context(), middlewares.VisitorID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (cc *CartController) AddItem(c *gin.Context) {
	var body struct {
		MenuItemID string `json:"menuItemId" binding:"required"`
		Quantity   int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	s, err := cc.cart.AddItem(c.Request.Context(), middlewares.VisitorID(c), body.MenuItemID, body.Quantity)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (cc *CartController) UpdateQuantity(c *gin.Context) {
	var body struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	s, err := cc.cart.UpdateQuantity(c.Request.Context(), middlewares.VisitorID(c), c.Param("id"), *body.Quantity)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	s, err := cc.cart.RemoveItem(c.Request.Context(), middlewares.VisitorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (cc *CartController) Clear(c *gin.Context) {
	s, err := cc.cart.Clear(c.Request.Context(), middlewares.VisitorID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (cc *CartController) Checkout(c *gin.Context) {
	acct, err := currentAccount(c, cc.accounts)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	res, err := cc.cart.Checkout(c.Request.Context(), middlewares.VisitorID(c), acct)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, res)
}
