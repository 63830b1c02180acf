package mail

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your order, {{.Name}}!</h2>
  <p>Order number: <strong>{{.Order.OrderNumber}}</strong></p>
  <p>Placed at: {{.Order.CreatedAt.Format "2006-01-02 15:04:05"}}</p>
  {{if .Order.PaymentMethod}}<p>Payment method: {{.Order.PaymentMethod}}</p>{{end}}
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr style="background: #f5f5f5;">
      <th>Title</th><th>Author</th><th>Qty</th><th>Unit Price</th><th>Subtotal</th>
    </tr>
    {{range .Order.Items}}
    <tr>
      <td>{{.Title}}</td>
      <td>{{.Author}}</td>
      <td>{{.Quantity}}</td>
      <td>{{money .UnitPrice}}</td>
      <td>{{money .TotalPrice}}</td>
    </tr>
    {{end}}
  </table>
  <p><strong>Total: {{money .Order.TotalAmount}}</strong></p>
  <p>We will notify you when your order ships.</p>
</body>
</html>`))

func renderConfirmation(name string, snap OrderSnapshot) (string, error) {
	var sb strings.Builder
	err := confirmationTmpl.Execute(&sb, struct {
		Name  string
		Order OrderSnapshot
	}{Name: name, Order: snap})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
