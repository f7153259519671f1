package controllers

import (
	"errors"
	"io"
	"net/http"

	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin *services.Admin
}

func NewAdminController(admin *services.Admin) *AdminController {
	return &AdminController{admin: admin}
}

type statusBody struct {
	Status string `json:"status"`
}

func (ac *AdminController) Overview(c *gin.Context) {
	o, err := ac.admin.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Users handles GET /api/admin/users?status=&search=&sortBy=&order=&page=&perPage=
func (ac *AdminController) Users(c *gin.Context) {
	var q struct {
		Status  string `form:"status"`
		Search  string `form:"search"`
		SortBy  string `form:"sortBy"`
		Order   string `form:"order"`
		Page    int    `form:"page"`
		PerPage int    `form:"perPage"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badJSON(c, err)
		return
	}
	page, err := ac.admin.Users(c.Request.Context(), services.UserQuery(q))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SetUserStatus sets the status from the body, or toggles it when the body
// names none.
func (ac *AdminController) SetUserStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badJSON(c, err)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if body.Status == "" {
		u, err := ac.admin.ToggleUserStatus(ctx, id)
		if err != nil {
			respondError(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, u)
		return
	}
	u, err := ac.admin.SetUserStatus(ctx, id, body.Status)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Orders handles GET /api/admin/orders?status=&search=&sortBy=&order=&page=
func (ac *AdminController) Orders(c *gin.Context) {
	var q struct {
		Status string `form:"status"`
		Search string `form:"search"`
		SortBy string `form:"sortBy"`
		Order  string `form:"order"`
		Page   int    `form:"page"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badJSON(c, err)
		return
	}
	page, err := ac.admin.Orders(c.Request.Context(), services.OrderQuery(q))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ac *AdminController) SetOrderStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	o, err := ac.admin.SetOrderStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (ac *AdminController) Subscriptions(c *gin.Context) {
	s, err := ac.admin.Subscriptions(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (ac *AdminController) SetSubscriptionStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	s, err := ac.admin.SetSubscriptionStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (ac *AdminController) MenuItems(c *gin.Context) {
	items, err := ac.admin.MenuItems(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (ac *AdminController) ToggleMenuItem(c *gin.Context) {
	item, err := ac.admin.ToggleMenuAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ac *AdminController) CateringRequests(c *gin.Context) {
	reqs, err := ac.admin.CateringRequests(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}
