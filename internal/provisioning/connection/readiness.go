package connection

import (
	"strconv"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
)

// Status is one observation of a connection while waiting for it.
type Status struct {
	State domain.ConnectionState
	// Raw is the provider's own status value, kept for error messages.
	Raw     string
	Message string
}

// ReadinessFunc interprets an endpoint as returned by a status poll.
type ReadinessFunc func(ep *devops.ServiceEndpoint) Status

// Readiness maps each connection kind to how its status is read. GitHub
// connections only expose isReady, so they never report Failed.
var Readiness = map[domain.ConnectionKind]ReadinessFunc{
	domain.ConnectionSourceControl:     isReady,
	domain.ConnectionCloudSubscription: operationState,
}

func isReady(ep *devops.ServiceEndpoint) Status {
	st := Status{State: domain.ConnectionPending, Raw: strconv.FormatBool(ep.IsReady)}
	if ep.IsReady {
		st.State = domain.ConnectionReady
	}
	return st
}

func operationState(ep *devops.ServiceEndpoint) Status {
	if ep.OperationStatus == nil {
		return Status{State: domain.ConnectionPending}
	}
	st := Status{
		State:   domain.ConnectionPending,
		Raw:     ep.OperationStatus.State,
		Message: ep.OperationStatus.StatusMessage,
	}
	switch strings.ToLower(ep.OperationStatus.State) {
	case "ready":
		st.State = domain.ConnectionReady
	case "failed":
		st.State = domain.ConnectionFailed
	}
	return st
}
