package controller

import (
	"errors"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/service"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/util"
	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// CheckEligibility godoc
// @Summary Check certificate eligibility for an enrollment
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "enrollment id"
// @Success 200 {object} util.Response{data=service.Eligibility}
// @Failure 404 {object} util.Response
// @Router /enrollments/{id}/certificate/eligibility [get]
func (c *CertificateController) CheckEligibility(ctx *gin.Context) {
	eligibility, err := c.CertificateService.CheckEligibility(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx, "enrollment not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, eligibility)
}

// GenerateCertificate godoc
// @Summary Issue or fetch the certificate for an enrollment
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "enrollment id"
// @Success 200 {object} util.Response{data=service.IssuedCertificate}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /enrollments/{id}/certificate [post]
func (c *CertificateController) GenerateCertificate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	issued, err := c.CertificateService.GenerateCertificate(ctx.Request.Context(), ctx.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEnrollmentNotFound):
			util.NotFound(ctx, "enrollment not found")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrProfileIncomplete):
			util.BadRequest(ctx, "complete your profile name before requesting a certificate")
		case errors.Is(err, util.ErrNotEligible):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if issued.Created {
		util.Created(ctx, issued)
		return
	}
	util.Success(ctx, issued)
}

// ListMyCertificates godoc
// @Summary List the learner's certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /certificates [get]
func (c *CertificateController) ListMyCertificates(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	certificates, err := c.CertificateService.ListMyCertificates(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certificates)
}

// VerifyCertificate godoc
// @Summary Verify a certificate by its public number
// @Tags certificates
// @Produce json
// @Param number path string true "certificate number"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /certificates/verify/{number} [get]
func (c *CertificateController) VerifyCertificate(ctx *gin.Context) {
	certificate, err := c.CertificateService.VerifyCertificate(ctx.Request.Context(), ctx.Param("number"))
	if err != nil {
		if errors.Is(err, util.ErrCertificateNotFound) {
			util.NotFound(ctx, "certificate not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, certificate)
}
