package paymentgateway

// CreatePaymentParams описывает параметры создания платежа на шлюзе.
type CreatePaymentParams struct {
	Amount      string // Сумма в виде десятичной строки, например "35.00"
	Currency    string // Валюта, например "USD"
	OrderID     string // Внутренний код заказа, шлюз возвращает его в callback
	URLReturn   string // Куда вернуть пользователя после оплаты
	URLCallback string // Куда шлюз доставляет webhook
}

// PaymentResponse представляет ответ шлюза на создание платежа
// или запрос его статуса.
type PaymentResponse struct {
	State  int `json:"state"`
	Result struct {
		UUID          string `json:"uuid"`     // ID платежа на стороне шлюза
		OrderID       string `json:"order_id"` // Эхо внутреннего кода заказа
		Amount        string `json:"amount"`
		PaymentAmount string `json:"payment_amount"`
		PaymentStatus string `json:"payment_status"`
		URL           string `json:"url"` // Ссылка на hosted-страницу оплаты
		Status        string `json:"status"`
	} `json:"result"`
}

// PaymentInfo содержит данные платежа, нужные остальной системе.
type PaymentInfo struct {
	ExternalID  string // ID платежа на стороне шлюза
	RedirectURL string // Ссылка на страницу оплаты
	Status      string // Статус платежа в терминах системы
}

// NormalizeStatus приводит статус платежа в терминах шлюза к статусу
// платежа в терминах системы. Неизвестные статусы считаются pending:
// терминальный переход выполняется только по однозначному сигналу.
func NormalizeStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "paid", "paid_over":
		return "paid"
	case "fail", "cancel", "wrong_amount", "system_fail":
		return "failed"
	case "expired":
		return "expired"
	default:
		return "pending"
	}
}
