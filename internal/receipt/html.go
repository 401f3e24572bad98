package receipt

import (
	"bytes"
	"html/template"
)

var htmlTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8" />
  <title>Order {{.OrderNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body { font-family: 'Courier New', monospace; font-size: 12px; padding: 12px; color: #000; }
    .header { text-align: center; border-bottom: 1px dashed #000; padding-bottom: 8px; margin-bottom: 8px; }
    .number { font-size: 16px; font-weight: bold; }
    .section { border-top: 1px dashed #999; padding-top: 6px; margin-top: 6px; }
    .row { display: flex; justify-content: space-between; margin: 2px 0; }
    .unit { margin-left: 12px; font-size: 11px; color: #333; }
    .total { font-weight: bold; font-size: 14px; }
    @media print { body { padding: 0; } }
  </style>
</head>
<body>
  <div class="header">
    <div class="number">Order #{{.OrderNumber}}</div>
    {{if .PlacedAt}}<div>Placed: {{.PlacedAt}}</div>{{end}}
    {{if .Status}}<div>Status: {{.Status}}</div>{{end}}
  </div>
  <div class="section">
    <div class="row"><div>Customer</div><div>{{.CustomerName}}</div></div>
    <div class="row"><div>Phone</div><div>{{.CustomerPhone}}</div></div>
    {{if .CustomerEmail}}<div class="row"><div>Email</div><div>{{.CustomerEmail}}</div></div>{{end}}
  </div>
  <div class="section">
    <div class="row"><div>Pickup</div><div>{{.StopName}}</div></div>
    {{if .StopAddress}}<div class="row"><div></div><div>{{.StopAddress}}</div></div>{{end}}
    <div class="row"><div>When</div><div>{{if .Weekday}}{{.Weekday}} {{end}}{{.PickupDate}} {{.PickupTime}}</div></div>
  </div>
  <div class="section">
    {{range .Lines}}
      <div class="row"><div>{{.Quantity}} x {{.Name}}</div><div>{{.Subtotal}}</div></div>
      <div class="unit">Unit: {{.UnitPrice}}</div>
    {{end}}
  </div>
  <div class="section">
    <div class="row total"><div>Total</div><div>{{.Total}}</div></div>
  </div>
</body>
</html>`))

func HTML(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
