package controllers

import (
	"net/http"

	"food-storefront/middlewares"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionController struct {
	subs     *services.Subscriptions
	accounts *services.Accounts
}

func NewSubscriptionController(subs *services.Subscriptions, accounts *services.Accounts) *SubscriptionController {
	return &SubscriptionController{subs: subs, accounts: accounts}
}

func (sc *SubscriptionController) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": sc.subs.Plans()})
}

// Selection returns {"plan": null} when nothing is selected.
func (sc *SubscriptionController) Selection(c *gin.Context) {
	p, err := sc.subs.Selection(c.Request.Context(), middlewares.VisitorID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": p})
}

func (sc *SubscriptionController) Select(c *gin.Context) {
	var body struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	p, err := sc.subs.SelectPlan(c.Request.Context(), middlewares.VisitorID(c), body.PlanID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": p})
}

func (sc *SubscriptionController) ClearSelection(c *gin.Context) {
	if err := sc.subs.ClearSelection(c.Request.Context(), middlewares.VisitorID(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (sc *SubscriptionController) Checkout(c *gin.Context) {
	acct, err := currentAccount(c, sc.accounts)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	res, err := sc.subs.ProceedToCheckout(c.Request.Context(), middlewares.VisitorID(c), acct)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}
