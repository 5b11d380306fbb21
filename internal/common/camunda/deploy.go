// internal/common/camunda/deploy.go
package camunda

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
)

// DeployedProcess is one process definition accepted by the broker.
type DeployedProcess struct {
	BpmnProcessID string `json:"bpmnProcessId"`
	Version       int32  `json:"version"`
	Key           int64  `json:"processDefinitionKey"`
	Resource      string `json:"resource"`
}

// BPMNFiles lists the .bpmn files directly under dir in name order.
func BPMNFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read BPMN directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".bpmn") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// DeployResources deploys every file in one command so the broker versions
// them together.
func (c *Client) DeployResources(ctx context.Context, paths ...string) ([]DeployedProcess, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no resources to deploy")
	}

	cmd := c.client.NewDeployResourceCommand()
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resource %s: %w", path, err)
		}
		cmd = cmd.AddResource(raw, filepath.Base(path))
	}

	result, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return cmd.Send(ctx)
	}, "deploy resources")
	if err != nil {
		return nil, err
	}

	return deployedProcesses(result.(*pb.DeployResourceResponse)), nil
}

func deployedProcesses(resp *pb.DeployResourceResponse) []DeployedProcess {
	var out []DeployedProcess
	for _, d := range resp.GetDeployments() {
		p := d.GetProcess()
		if p == nil {
			continue
		}
		out = append(out, DeployedProcess{
			BpmnProcessID: p.GetBpmnProcessId(),
			Version:       p.GetVersion(),
			Key:           p.GetProcessDefinitionKey(),
			Resource:      p.GetResourceName(),
		})
	}
	return out
}
