package controllers

import (
	"net/http"
	"strconv"

	"food-storefront/log"
	"food-storefront/middlewares"
	"food-storefront/models"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

type CateringController struct {
	catering *services.Catering
}

func NewCateringController(catering *services.Catering) *CateringController {
	return &CateringController{catering: catering}
}

// draftResponse answers with the draft, attaching it to error bodies too so
// the wizard can render per-field messages.
func draftResponse(c *gin.Context, d models.CateringDraft, err error) {
	if err != nil {
		respondError(c, err, gin.H{"draft": d})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (cc *CateringController) Draft(c *gin.Context) {
	d, err := cc.catering.Draft(c.Request.Context(), middlewares.VisitorID(c))
	draftResponse(c, d, err)
}

func (cc *CateringController) Update(c *gin.Context) {
	var patch models.CateringFormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}
	d, err := cc.catering.UpdateFormData(c.Request.Context(), middlewares.VisitorID(c), patch)
	draftResponse(c, d, err)
}

func (cc *CateringController) ToggleMenuItem(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	d, err := cc.catering.ToggleMenuItem(c.Request.Context(), middlewares.VisitorID(c), body.Name)
	draftResponse(c, d, err)
}

func (cc *CateringController) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		respondError(c, services.ErrInvalidStep, nil)
		return
	}
	d, err := cc.catering.ValidateStep(c.Request.Context(), middlewares.VisitorID(c), step)
	draftResponse(c, d, err)
}

func (cc *CateringController) Next(c *gin.Context) {
	d, err := cc.catering.Next(c.Request.Context(), middlewares.VisitorID(c))
	draftResponse(c, d, err)
}

func (cc *CateringController) Back(c *gin.Context) {
	d, err := cc.catering.Back(c.Request.Context(), middlewares.VisitorID(c))
	draftResponse(c, d, err)
}

func (cc *CateringController) SetStep(c *gin.Context) {
	var body struct {
		Step int `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	d, err := cc.catering.SetStep(c.Request.Context(), middlewares.VisitorID(c), body.Step)
	draftResponse(c, d, err)
}

func (cc *CateringController) Submit(c *gin.Context) {
	req, d, err := cc.catering.Submit(c.Request.Context(), middlewares.VisitorID(c))
	if err != nil {
		if msg, ok := d.Errors[services.FormErrorField]; ok {
			l := log.WithComponent("api")
			l.Error().Err(err).Str("visitor", middlewares.VisitorID(c)).Msg("catering submit failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "draft": d})
			return
		}
		respondError(c, err, gin.H{"draft": d})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req, "draft": d})
}

func (cc *CateringController) Reset(c *gin.Context) {
	d, err := cc.catering.Reset(c.Request.Context(), middlewares.VisitorID(c))
	draftResponse(c, d, err)
}
