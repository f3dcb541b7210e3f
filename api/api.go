/*
Copyright 2025 NovaTrek Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/FredvanRijswijk/novatrek-engine"
	"github.com/FredvanRijswijk/novatrek-engine/api/middleware"
	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
)

type Api struct {
	engine *novatrek.NovaTrek
	router *gin.Engine
}

// Router wires the public surface and the token-guarded admin surface.
func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/waitlist", a.SignupWaitlist)
	router.GET("/waitlist/:id", a.GetWaitlistEntry)
	router.POST("/auth/joined", a.MarkWaitlistJoined)

	router.POST("/applications", a.CreateSellerApplication)
	router.GET("/applications/:id", a.GetSellerApplication)

	router.POST("/checkout/intent", a.CreateCheckoutIntent)
	router.GET("/transactions/:id", a.GetTransaction)

	admin := router.Group("/admin", middleware.AdminAuthMiddleware())
	admin.POST("/waitlist/:id/approve", a.ApproveWaitlistEntry)
	admin.POST("/waitlist/:id/invite", a.InviteWaitlistEntry)
	admin.POST("/waitlist/bulk-invite", a.BulkInviteWaitlistEntries)
	admin.GET("/waitlist/export", a.ExportWaitlist)
	admin.POST("/applications/:id/decide", a.DecideSellerApplication)
	admin.POST("/sellers/:id/payout-account", a.CompleteSellerPayoutOnboarding)
	admin.POST("/products", a.CreateProduct)
	admin.GET("/transactions", a.GetAllTransactions)
	admin.POST("/reconciliation", a.ReconcileAuthorization)

	return a.router
}

func NewAPI(engine *novatrek.NovaTrek) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{engine: engine, router: r}
}

// handleError renders an engine error with the HTTP status its code maps to.
func handleError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}
