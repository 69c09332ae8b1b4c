package deliveries

import (
	"bytes"
	"fmt"
	"html/template"
)

var noteTemplate = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #1a1a1a; }
  h1 { font-size: 20px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
  table { width: 100%; border-collapse: collapse; margin-top: 24px; }
  th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #ddd; }
  th { background: #f5f5f5; }
  .meta { margin-top: 16px; font-size: 13px; color: #555; }
</style>
</head>
<body>
<h1>Delivery note {{.OrderNumber}}</h1>
<p class="meta">Date: {{.DeliveryDate.Format "2006-01-02"}} &middot; Status: {{.Status}} &middot; Payment: {{.Payment}}</p>
<table>
  <tr><th>Client</th><td>{{.ClientName}}</td></tr>
  <tr><th>Tanker</th><td>{{.TankerRegistration}}</td></tr>
  <tr><th>Delivered volume (L)</th><td>{{printf "%.0f" .VolumeLivre}}</td></tr>
  <tr><th>Missing volume (L)</th><td>{{printf "%.0f" .VolumeManquant}}</td></tr>
</table>
</body>
</html>`))

// RenderNoteHTML builds the printable delivery note for the PDF converter.
func RenderNoteHTML(delivery Delivery) (string, error) {
	var buf bytes.Buffer
	if err := noteTemplate.Execute(&buf, delivery); err != nil {
		return "", fmt.Errorf("render delivery note: %w", err)
	}
	return buf.String(), nil
}
