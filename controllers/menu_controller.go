package controllers

import (
	"net/http"
	"strconv"

	"food-storefront/models"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	menu *services.Menu
}

func NewMenuController(menu *services.Menu) *MenuController {
	return &MenuController{menu: menu}
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// DailyMenu handles GET /api/menu?category=&q=&special=&available=&dietary=
func (mc *MenuController) DailyMenu(c *gin.Context) {
	menu, err := mc.menu.DailyMenu(c.Request.Context(), services.MenuFilter{
		Category:      c.Query("category"),
		Query:         c.Query("q"),
		Dietary:       c.Query("dietary"),
		SpecialOnly:   queryBool(c, "special"),
		AvailableOnly: queryBool(c, "available"),
	})
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (mc *MenuController) GetItem(c *gin.Context) {
	item, err := mc.menu.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (mc *MenuController) HowItWorks(c *gin.Context) {
	c.JSON(http.StatusOK, mc.menu.HowItWorks())
}

func (mc *MenuController) EventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"eventTypes": models.EventTypes})
}
