package worker

import (
	"github.com/clubhouse-ops/membership-admin/internal/service"
)

// StartActivityWorker registers the write activity handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
