package handler

import "net/http"

// ConfigHandler exposes public client configuration.
type ConfigHandler struct {
	publicKey string
}

func NewConfigHandler(publicKey string) *ConfigHandler {
	return &ConfigHandler{publicKey: publicKey}
}

// Get handles GET /config. Only the publishable key is ever returned.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"paystackPublicKey": h.publicKey})
}
