package webhook

import "context"

// InstanceStatus is the connection state the automation engine reports for a
// WhatsApp instance.
type InstanceStatus struct {
	Name      string `json:"instancia"`
	State     string `json:"estado"`
	Phone     string `json:"telefone"`
	QRCode    string `json:"qrcode"`
	Connected bool   `json:"conectado"`
}

// CreateInstance provisions a new WhatsApp instance on the automation engine.
func (c *Client) CreateInstance(ctx context.Context, name string) error {
	return c.postJSON(ctx, "/instancias", map[string]string{"funcao": "criar", "instancia": name}, nil)
}

// ConnectInstance starts a connection attempt; the engine answers with the
// pairing QR code when one is needed.
func (c *Client) ConnectInstance(ctx context.Context, name string) (InstanceStatus, error) {
	var status InstanceStatus
	err := c.postJSON(ctx, "/instancias", map[string]string{"funcao": "conectar", "instancia": name}, &status)
	return status, err
}

// DisconnectInstance drops the instance's session.
func (c *Client) DisconnectInstance(ctx context.Context, name string) error {
	return c.postJSON(ctx, "/instancias", map[string]string{"funcao": "desconectar", "instancia": name}, nil)
}

// DeleteInstance removes the instance from the automation engine. Also used
// as the compensating action when a local persist fails after a create.
func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	return c.postJSON(ctx, "/instancias", map[string]string{"funcao": "apagar", "instancia": name}, nil)
}

// InstanceState polls the engine for the instance's current status.
func (c *Client) InstanceState(ctx context.Context, name string) (InstanceStatus, error) {
	var status InstanceStatus
	err := c.postJSON(ctx, "/instancias", map[string]string{"funcao": "estado", "instancia": name}, &status)
	return status, err
}
