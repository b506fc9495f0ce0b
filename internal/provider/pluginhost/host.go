package pluginhost

import (
	"fmt"
	"os/exec"

	"github.com/nitro-scheduler/nitro/internal/provider"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

// Host launches and manages one provider plugin subprocess.
type Host struct {
	client *plugin.Client
}

// Launch starts the plugin binary at path and dispenses its Adapter.
func Launch(path string, logger hclog.Logger) (provider.Adapter, *Host, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap,
		Cmd:             exec.Command(path),
		Logger:          logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("pluginhost: connecting to %s: %w", path, err)
	}

	raw, err := rpcClient.Dispense("provider")
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("pluginhost: dispensing provider from %s: %w", path, err)
	}

	adapter, ok := raw.(provider.Adapter)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("pluginhost: %s did not dispense a provider.Adapter", path)
	}

	return adapter, &Host{client: client}, nil
}

// Close terminates the plugin subprocess.
func (h *Host) Close() {
	h.client.Kill()
}
