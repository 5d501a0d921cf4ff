package controllers

import (
	"net/http"

	"github.com/angelmondragon/webmarket/api/responses"
	"github.com/angelmondragon/webmarket/internal/analytics"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
)

// AdminAnalytics serves the dashboard KPIs.
func AdminAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		dash, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dash)
	}
}
