package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/ctvbid/ctvbid/vast"
	"github.com/golang/glog"
)

const versionEndpointValueNotSet = "not-set"

type versionResponse struct {
	Revision string `json:"revision"`
	Version  string `json:"version"`
	// OpenRTB is the protocol version announced to DSPs in the X-Openrtb-Version header.
	OpenRTB string `json:"openrtb"`
	// VAST is the version of the fallback document served when no ad is usable.
	VAST string `json:"vast"`
}

// NewVersionEndpoint reports the build (git tag and commit) alongside the protocol versions the
// server speaks.
func NewVersionEndpoint(version, revision, openrtbVersion string) http.HandlerFunc {
	response, err := json.Marshal(versionResponse{
		Revision: valueOrNotSet(revision),
		Version:  valueOrNotSet(version),
		OpenRTB:  valueOrNotSet(openrtbVersion),
		VAST:     vast.DefaultVersion,
	})
	if err != nil {
		glog.Fatalf("error creating /version endpoint response: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(response)
	}
}

func valueOrNotSet(value string) string {
	if value == "" {
		return versionEndpointValueNotSet
	}
	return value
}
