package marzban

import (
	"strings"

	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// protocolEntry pairs per-protocol proxy settings with the panel inbound
// tags they are served on
type protocolEntry struct {
	proxy    models.Proxy
	inbounds []string
}

// protocolTable is the fixed protocol→settings mapping the panel expects
var protocolTable = map[string]protocolEntry{
	"vmess": {
		proxy:    models.Proxy{},
		inbounds: []string{"VMess TCP"},
	},
	"vless": {
		proxy:    models.Proxy{Flow: "xtls-rprx-vision"},
		inbounds: []string{"VLESS Reality Steal Oneself"},
	},
	"trojan": {
		proxy:    models.Proxy{},
		inbounds: []string{"Trojan Websocket TLS"},
	},
	"shadowsocks": {
		proxy:    models.Proxy{Method: "chacha20-ietf-poly1305"},
		inbounds: []string{"Shadowsocks TCP"},
	},
}

// buildProtocols resolves the enabled-protocol name list against the
// fixed table; unknown names are skipped
func buildProtocols(enabled []string) (map[string]models.Proxy, map[string][]string) {
	proxies := make(map[string]models.Proxy)
	inbounds := make(map[string][]string)

	for _, name := range enabled {
		entry, ok := protocolTable[strings.ToLower(name)]
		if !ok {
			continue
		}
		key := strings.ToLower(name)
		proxies[key] = entry.proxy
		inbounds[key] = entry.inbounds
	}

	return proxies, inbounds
}
