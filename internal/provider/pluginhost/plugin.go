// Package pluginhost loads third-party provider adapters as
// hashicorp/go-plugin subprocesses, so an operator can add a provider
// (e.g. an internal groupware system) without a rebuild of the server
// binary. Uses the simpler net/rpc plugin transport rather than a
// gRPC-stub, since no .proto toolchain runs in this build.
package pluginhost

import (
	"github.com/hashicorp/go-plugin"
)

// HandshakeConfig verifies that host and plugin process agree on the
// protocol before any RPC is attempted.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "NITRO_PROVIDER_PLUGIN",
	MagicCookieValue: "nitro-provider-v1",
}

// PluginMap is the single entry dispensed by every provider plugin binary.
var PluginMap = map[string]plugin.Plugin{
	"provider": &AdapterPlugin{},
}
