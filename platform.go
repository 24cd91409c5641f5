// Copyright 2026 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slogtoys

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"cloud.google.com/go/compute/metadata"
)

// Platform describes where the current process is running. It feeds the
// reporter's host report and is useful as startup-log material.
type Platform struct {
	Hostname  string
	PID       int
	GoVersion string

	// Kind is one of "kubernetes", "cloudrun", "cloudrunjob",
	// "cloudfunctions", "appengine", "gce", or "none".
	Kind string

	// ProjectID is the Google Cloud project, when one is detectable.
	ProjectID string

	// Labels carries a small set of kind-specific details such as the
	// service name, revision, or cluster.
	Labels map[string]string
}

var (
	platformInfo Platform
	platformOnce sync.Once
)

// Metadata probes are package variables so tests can substitute them.
var (
	metadataOnGCE     = metadata.OnGCE
	metadataProjectID = func(ctx context.Context) (string, error) {
		return metadata.ProjectIDWithContext(ctx)
	}
)

// DetectPlatform inspects well-known environment variables and, when the
// process appears to be on Google Cloud, the metadata service, to identify
// the runtime platform. Results are cached after the first call; pass a
// context with a deadline if the metadata service may be unreachable.
func DetectPlatform(ctx context.Context) Platform {
	platformOnce.Do(func() {
		platformInfo = detectPlatform(ctx)
	})
	return platformInfo
}

func detectPlatform(ctx context.Context) Platform {
	host, _ := os.Hostname()
	info := Platform{
		Hostname:  host,
		PID:       os.Getpid(),
		GoVersion: runtime.Version(),
		Kind:      "none",
	}

	switch {
	case detectCloudFunctions(&info):
	case detectCloudRunService(&info):
	case detectCloudRunJob(&info):
	case detectAppEngine(&info):
	case detectKubernetes(&info):
	case metadataOnGCE():
		info.Kind = "gce"
	}

	if info.ProjectID == "" {
		info.ProjectID = trimmedEnv("GOOGLE_CLOUD_PROJECT")
	}
	if info.ProjectID == "" && metadataOnGCE() {
		if pid, err := metadataProjectID(ctx); err == nil {
			info.ProjectID = strings.TrimSpace(pid)
		}
	}
	return info
}

func detectCloudFunctions(info *Platform) bool {
	service := trimmedEnv("K_SERVICE")
	target := trimmedEnv("FUNCTION_TARGET")
	if service == "" || target == "" {
		return false
	}
	info.Kind = "cloudfunctions"
	info.Labels = map[string]string{"service": service, "target": target}
	if revision := trimmedEnv("K_REVISION"); revision != "" {
		info.Labels["revision"] = revision
	}
	return true
}

func detectCloudRunService(info *Platform) bool {
	service := trimmedEnv("K_SERVICE")
	revision := trimmedEnv("K_REVISION")
	if service == "" || revision == "" {
		return false
	}
	info.Kind = "cloudrun"
	info.Labels = map[string]string{"service": service, "revision": revision}
	return true
}

func detectCloudRunJob(info *Platform) bool {
	job := trimmedEnv("CLOUD_RUN_JOB")
	execution := trimmedEnv("CLOUD_RUN_EXECUTION")
	if job == "" || execution == "" {
		return false
	}
	info.Kind = "cloudrunjob"
	info.Labels = map[string]string{"job": job, "execution": execution}
	return true
}

func detectAppEngine(info *Platform) bool {
	service := trimmedEnv("GAE_SERVICE")
	version := trimmedEnv("GAE_VERSION")
	if service == "" && version == "" {
		return false
	}
	info.Kind = "appengine"
	info.Labels = map[string]string{}
	if service != "" {
		info.Labels["service"] = service
	}
	if version != "" {
		info.Labels["version"] = version
	}
	return true
}

func detectKubernetes(info *Platform) bool {
	if trimmedEnv("KUBERNETES_SERVICE_HOST") == "" {
		return false
	}
	info.Kind = "kubernetes"
	labels := map[string]string{}
	if pod := trimmedEnv("POD_NAME"); pod != "" {
		labels["pod"] = pod
	} else if host := trimmedEnv("HOSTNAME"); host != "" {
		labels["pod"] = host
	}
	if ns := trimmedEnv("NAMESPACE_NAME"); ns != "" {
		labels["namespace"] = ns
	} else if ns := trimmedEnv("NAMESPACE"); ns != "" {
		labels["namespace"] = ns
	}
	if len(labels) > 0 {
		info.Labels = labels
	}
	return true
}

// trimmedEnv reads an environment variable and trims surrounding whitespace.
func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
