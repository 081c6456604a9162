package email

// Every customer-supplied value goes through | escape; amounts and dates are
// produced by the renderer and are already safe.

const receiptHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
    .content { background-color: #f9f9f9; padding: 20px; border: 1px solid #ddd; }
    .info-row { margin: 10px 0; padding: 10px; background-color: white; border-radius: 3px; }
    .label { font-weight: bold; color: #555; }
    table { width: 100%; border-collapse: collapse; margin: 20px 0; background-color: white; }
    th { background-color: #4CAF50; color: white; padding: 12px; text-align: left; }
    td { padding: 10px; border-bottom: 1px solid #ddd; }
    .total-row { font-weight: bold; font-size: 1.2em; background-color: #f0f0f0; }
    .footer { text-align: center; margin-top: 20px; padding: 20px; color: #777; font-size: 0.9em; }
  </style>
</head>
<body>
  <div class="header">
    <h1>{{ t.heading }}</h1>
  </div>
  <div class="content">
    <p>{{ t.greeting }}</p>
    <p>{{ t.intro }}</p>
    <div class="info-row"><span class="label">{{ t.order }}:</span> #{{ order_id | escape }}</div>
    <div class="info-row"><span class="label">{{ t.receipt }}:</span> #{{ receipt_id }}</div>
    <div class="info-row"><span class="label">{{ t.date }}:</span> {{ date }}</div>
    <h2>{{ t.details }}</h2>
    <table>
      <thead>
        <tr>
          <th>{{ t.product }}</th>
          <th style="text-align: center;">{{ t.quantity }}</th>
          <th style="text-align: right;">{{ t.unit_price }}</th>
          <th style="text-align: right;">{{ t.subtotal }}</th>
        </tr>
      </thead>
      <tbody>
{%- for item in items %}
        <tr>
          <td>{{ item.name | escape }}</td>
          <td style="text-align: center;">{{ item.quantity }}</td>
          <td style="text-align: right;">{{ item.unit_price }}</td>
          <td style="text-align: right;">{{ item.subtotal }}</td>
        </tr>
{%- endfor %}
        <tr class="total-row">
          <td colspan="3" style="text-align: right;">{{ t.total }}:</td>
          <td style="text-align: right;">{{ total }}</td>
        </tr>
      </tbody>
    </table>
    <p>{{ t.questions }}</p>
  </div>
  <div class="footer">
    <p>{{ t.automated }}</p>
    <p>&copy; {{ year }} {{ shop | escape }}. {{ t.rights }}</p>
  </div>
</body>
</html>
`

const receiptTextTemplate = `{{ t.heading }}

{{ t.greeting }}
{{ t.intro }}

{{ t.order }}: #{{ order_id }}
{{ t.receipt }}: #{{ receipt_id }}
{{ t.date }}: {{ date }}

{{ t.details }}
{%- for item in items %}
- {{ item.name }} x{{ item.quantity }} @ {{ item.unit_price }} = {{ item.subtotal }}
{%- endfor %}

{{ t.total }}: {{ total }}

{{ t.questions }}

{{ t.automated }}
(c) {{ year }} {{ shop }}. {{ t.rights }}
`
