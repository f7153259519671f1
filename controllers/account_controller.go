package controllers

import (
	"net/http"

	"food-storefront/middlewares"
	"food-storefront/models"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

// AccountController serves the logged-in user's account. Every route sits
// behind middlewares.AuthMiddleware.
type AccountController struct {
	accounts *services.Accounts
}

func NewAccountController(accounts *services.Accounts) *AccountController {
	return &AccountController{accounts: accounts}
}

func accountResponse(c *gin.Context, acct *models.UserAccount, err error) {
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, acct)
}

func (ac *AccountController) Get(c *gin.Context) {
	acct, err := ac.accounts.Get(c.Request.Context(), middlewares.UserID(c))
	accountResponse(c, acct, err)
}

func (ac *AccountController) Refresh(c *gin.Context) {
	acct, err := ac.accounts.Refresh(c.Request.Context(), middlewares.UserID(c))
	accountResponse(c, acct, err)
}

func (ac *AccountController) UpdateProfile(c *gin.Context) {
	var patch services.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}
	acct, err := ac.accounts.UpdateProfile(c.Request.Context(), middlewares.UserID(c), patch)
	accountResponse(c, acct, err)
}

func (ac *AccountController) UpdatePreferences(c *gin.Context) {
	var patch services.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}
	acct, err := ac.accounts.UpdatePreferences(c.Request.Context(), middlewares.UserID(c), patch)
	accountResponse(c, acct, err)
}

func (ac *AccountController) UpdateSettings(c *gin.Context) {
	var patch services.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}
	acct, err := ac.accounts.UpdateAccountSettings(c.Request.Context(), middlewares.UserID(c), patch)
	accountResponse(c, acct, err)
}

func (ac *AccountController) AddPaymentMethod(c *gin.Context) {
	var in services.NewPaymentMethod
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	acct, err := ac.accounts.AddPaymentMethod(c.Request.Context(), middlewares.UserID(c), in)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func (ac *AccountController) RemovePaymentMethod(c *gin.Context) {
	acct, err := ac.accounts.RemovePaymentMethod(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	accountResponse(c, acct, err)
}

func (ac *AccountController) SetDefaultPaymentMethod(c *gin.Context) {
	acct, err := ac.accounts.SetDefaultPaymentMethod(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	accountResponse(c, acct, err)
}
