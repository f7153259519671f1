package controllers

import (
	"net/http"
	"time"

	"food-storefront/middlewares"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	accounts     *services.Accounts
	secureCookie bool
}

func NewAuthController(accounts *services.Accounts, secureCookie bool) *AuthController {
	return &AuthController{accounts: accounts, secureCookie: secureCookie}
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, token, maxAge, "/", "", ac.secureCookie, true)
}

func (ac *AuthController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	res, err := ac.accounts.Login(c.Request.Context(), c.ClientIP(), body.Email, body.Password)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	ac.setSessionCookie(c, res.Token, int(time.Until(res.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, res)
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.accounts.Logout(c.Request.Context(), middlewares.SessionToken(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	ac.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}
