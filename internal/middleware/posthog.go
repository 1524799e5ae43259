package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// memberAPIPrefix scopes analytics to routes called by signed-in members. Health, docs,
// static receipts and the service-key administrative routes all live outside it.
const memberAPIPrefix = "/api/v1/"

const analyticsPropsKey = contextKey("analyticsProps")

// AnalyticsSink receives analytics events. *utils.PosthogClientWrapper satisfies it.
type AnalyticsSink interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// ledgerEvents names the events for ledger mutations. Routes not listed fall back to a
// name derived from the route pattern.
var ledgerEvents = map[string]string{
	"POST /api/v1/transactions":                        "transaction_created",
	"PUT /api/v1/transactions/:transactionID":          "transaction_updated",
	"DELETE /api/v1/transactions/:transactionID":       "transaction_deleted",
	"POST /api/v1/transactions/:transactionID/restore": "transaction_restored",
	"POST /api/v1/receipts":                            "receipt_uploaded",
	"POST /api/v1/accounts/reconcile":                  "balances_reconciled",
	"POST /api/v1/fiscal-years":                        "fiscal_year_created",
	"POST /api/v1/fiscal-years/:fiscalYearID/activate": "fiscal_year_activated",
	"DELETE /api/v1/fiscal-years/:fiscalYearID":        "fiscal_year_deleted",
	"POST /api/v1/proposals":                           "deletion_proposed",
	"POST /api/v1/proposals/:proposalID/votes":         "deletion_vote_cast",
	"POST /api/v1/proposals/:proposalID/cancel":        "deletion_approval_cancelled",
	"POST /api/v1/proposals/:proposalID/execute":       "deletion_executed",
	"POST /api/v1/invite-codes":                        "invite_code_created",
	"DELETE /api/v1/members/:userID":                   "member_deleted",
}

// TrackProperty attaches a property to the analytics event of the current request.
// Handlers use it for values only known after the service call, such as the fiscal
// year a transaction landed in.
func TrackProperty(c *gin.Context, key string, value any) {
	props := analyticsProps(c)
	if props == nil {
		props = make(map[string]any)
		c.Set(string(analyticsPropsKey), props)
	}
	props[key] = value
}

func analyticsProps(c *gin.Context) map[string]any {
	v, ok := c.Get(string(analyticsPropsKey))
	if !ok {
		return nil
	}
	props, _ := v.(map[string]any)
	return props
}

// eventName resolves the analytics event for a matched route, e.g.
// "GET /api/v1/fiscal-years/:fiscalYearID/summary" becomes "fiscal-years_:fiscalYearID_summary".
func eventName(method, route string) string {
	if name, ok := ledgerEvents[method+" "+route]; ok {
		return name
	}
	return strings.ReplaceAll(strings.TrimPrefix(route, memberAPIPrefix), "/", "_")
}

// PosthogMiddleware reports each successful member request to sink, attributed to the
// authenticated user and tagged with the fiscal year it concerns when known.
func PosthogMiddleware(sink AnalyticsSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil || !sink.IsInitialized() || !strings.HasPrefix(c.Request.URL.Path, memberAPIPrefix) {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}
		route := c.FullPath()
		if route == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       route,
			"status_code": c.Writer.Status(),
		}
		if fy := c.Param("fiscalYearID"); fy != "" {
			props["fiscalYearID"] = fy
		} else if fy := c.Query("fiscalYearID"); fy != "" {
			props["fiscalYearID"] = fy
		}
		for _, p := range c.Params {
			if p.Key != "fiscalYearID" {
				props[p.Key] = p.Value
			}
		}
		for k, v := range analyticsProps(c) {
			props[k] = v
		}

		sink.Enqueue(userID, eventName(c.Request.Method, route), props)
	}
}
