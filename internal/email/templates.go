package email

import (
	"bytes"
	"fmt"
	"html/template"

	"foodhub/internal/domain"
)

var statusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusReceived:  "Sipariş alındı",
	domain.OrderStatusPreparing: "Hazırlanıyor",
	domain.OrderStatusOnTheWay:  "Yolda",
	domain.OrderStatusDelivered: "Teslim edildi",
	domain.OrderStatusCancelled: "İptal edildi",
}

func StatusLabel(s domain.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

type itemView struct {
	Name      string
	Option    string
	Quantity  int
	Price     string
	LineTotal string
}

type orderView struct {
	ID          uint
	Name        string
	StatusLabel string
	Items       []itemView
	Discount    string
	Total       string
	HasDiscount bool
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Siparişiniz alındı</h1>
	<p>Merhaba {{.Name}}, #{{.ID}} numaralı siparişiniz bize ulaştı.</p>
	<table style="width: 100%; border-collapse: collapse;">
		<tbody>
		{{range .Items}}<tr>
			<td style="padding: 8px; border-bottom: 1px solid #eee;">{{.Name}}{{if .Option}} ({{.Option}}){{end}}</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">₺{{.LineTotal}}</td>
		</tr>
		{{end}}</tbody>
	</table>
	{{if .HasDiscount}}<p style="text-align: right;">İndirim: -₺{{.Discount}}</p>{{end}}
	<p style="text-align: right; font-size: 18px; font-weight: bold;">Toplam: ₺{{.Total}}</p>
</body>
</html>`))

var statusTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">#{{.ID}} numaralı siparişiniz</h1>
	<p>Merhaba {{.Name}}, siparişinizin durumu güncellendi:</p>
	<p style="font-size: 20px; font-weight: bold;">{{.StatusLabel}}</p>
	<p style="font-size: 12px; color: #999;">Bu e-posta otomatik olarak gönderilmiştir.</p>
</body>
</html>`))

func BuildOrderConfirmationBody(order domain.Order) (string, error) {
	return render(confirmationTmpl, order)
}

func BuildStatusUpdateBody(order domain.Order) (string, error) {
	return render(statusTmpl, order)
}

func render(t *template.Template, order domain.Order) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, newOrderView(order)); err != nil {
		return "", fmt.Errorf("rendering %s mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func newOrderView(order domain.Order) orderView {
	v := orderView{
		ID:          order.ID,
		Name:        "",
		StatusLabel: StatusLabel(order.Status),
		Discount:    order.Discount.StringFixed(2),
		Total:       order.Total.StringFixed(2),
		HasDiscount: order.Discount.IsPositive(),
	}
	if order.Delivery.Name != nil {
		v.Name = *order.Delivery.Name
	} else if order.AccountName != nil {
		v.Name = *order.AccountName
	}

	for _, item := range order.Items {
		name := item.ProductName
		if name == "" {
			name = fmt.Sprintf("Ürün #%d", item.ProductID)
		}
		iv := itemView{
			Name:      name,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
			LineTotal: item.LineTotal().StringFixed(2),
		}
		if item.ExtraText != nil {
			iv.Option = *item.ExtraText
		} else if item.SelectedOption != nil {
			iv.Option = *item.SelectedOption
		}
		v.Items = append(v.Items, iv)
	}
	return v
}
