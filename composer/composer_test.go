package composer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samgozman/morning-thread/scavenger/fetch"
	"github.com/stretchr/testify/assert"
)

func static(body string) SourceFunc {
	return func(context.Context) (string, error) { return body, nil }
}

func failing(err error) SourceFunc {
	return func(context.Context) (string, error) { return "", err }
}

func testSections(news, fx, crypto, weather SourceFunc) []Section {
	return []Section{
		{Name: "news", Title: "Главные новости", Placeholder: "Ошибка при получении новостей.", Source: news},
		{Name: "fx", Title: "Курсы валют", Placeholder: "Ошибка при получении курсов валют.", Source: fx},
		{Name: "crypto", Title: "Курсы криптовалют", Placeholder: "Ошибка при получении курсов криптовалют.", Source: crypto},
		{Name: "weather", Title: "Погода в Красноярске", Placeholder: "Ошибка при получении погоды.", Source: weather},
	}
}

func TestComposer_Compose(t *testing.T) {
	news := static("• Первая\n• Вторая")
	fx := static("USD: 92.35 RUB\nEUR: 100.10 RUB\nCNY: 12.90 RUB")
	crypto := static("BTC: $67000\nETH: $3512.42\nTON: $2.45")
	weather := static("Температура: -3.5°C\nСостояние: Ясно")

	tests := []struct {
		name     string
		sections []Section
		greeting string
		want     string
	}{
		{
			name:     "all sections succeed",
			sections: testSections(news, fx, crypto, weather),
			greeting: "Доброе утро!",
			want: "Доброе утро!\n\n" +
				"Главные новости:\n• Первая\n• Вторая\n\n" +
				"Курсы валют:\nUSD: 92.35 RUB\nEUR: 100.10 RUB\nCNY: 12.90 RUB\n\n" +
				"Курсы криптовалют:\nBTC: $67000\nETH: $3512.42\nTON: $2.45\n\n" +
				"Погода в Красноярске:\nТемпература: -3.5°C\nСостояние: Ясно",
		},
		{
			name:     "one failing section among four",
			sections: testSections(news, failing(fetch.NetworkError("cbr:daily", errors.New("timeout"))), crypto, weather),
			greeting: "Данные по запросу:",
			want: "Данные по запросу:\n\n" +
				"Главные новости:\n• Первая\n• Вторая\n\n" +
				"Курсы валют:\nОшибка при получении курсов валют.\n\n" +
				"Курсы криптовалют:\nBTC: $67000\nETH: $3512.42\nTON: $2.45\n\n" +
				"Погода в Красноярске:\nТемпература: -3.5°C\nСостояние: Ясно",
		},
		{
			name: "every section fails",
			sections: testSections(
				failing(fetch.ParseError("google:ru", errors.New("EOF"))),
				failing(fetch.SchemaError("cbr:daily", "Valute.USD")),
				failing(fetch.ProtocolError("coingecko:simple-price", 429, "429 Too Many Requests")),
				failing(errors.New("unexpected")),
			),
			want: "Главные новости:\nОшибка при получении новостей.\n\n" +
				"Курсы валют:\nОшибка при получении курсов валют.\n\n" +
				"Курсы криптовалют:\nОшибка при получении курсов криптовалют.\n\n" +
				"Погода в Красноярске:\nОшибка при получении погоды.",
		},
		{
			name: "panicking source",
			sections: testSections(news, fx, crypto, func(context.Context) (string, error) {
				panic("nil map")
			}),
			want: "Главные новости:\n• Первая\n• Вторая\n\n" +
				"Курсы валют:\nUSD: 92.35 RUB\nEUR: 100.10 RUB\nCNY: 12.90 RUB\n\n" +
				"Курсы криптовалют:\nBTC: $67000\nETH: $3512.42\nTON: $2.45\n\n" +
				"Погода в Красноярске:\nОшибка при получении погоды.",
		},
		{
			name:     "missing source",
			sections: testSections(news, fx, crypto, nil),
			want: "Главные новости:\n• Первая\n• Вторая\n\n" +
				"Курсы валют:\nUSD: 92.35 RUB\nEUR: 100.10 RUB\nCNY: 12.90 RUB\n\n" +
				"Курсы криптовалют:\nBTC: $67000\nETH: $3512.42\nTON: $2.45\n\n" +
				"Погода в Красноярске:\nОшибка при получении погоды.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposer(tt.sections...)
			if got := c.Compose(context.Background(), tt.greeting); got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposer_Compose_NoCaching(t *testing.T) {
	var calls [4]atomic.Int32
	counted := func(i int, body string) SourceFunc {
		return func(context.Context) (string, error) {
			calls[i].Add(1)
			return body, nil
		}
	}
	c := NewComposer(testSections(counted(0, "n"), counted(1, "f"), counted(2, "c"), counted(3, "w"))...)

	first := c.Compose(context.Background(), "Данные по запросу:")
	second := c.Compose(context.Background(), "Данные по запросу:")

	assert.Equal(t, first, second)
	for i := range calls {
		assert.Equal(t, int32(2), calls[i].Load(), "section %d", i)
	}
}

func TestComposer_Compose_Concurrent(t *testing.T) {
	slow := func(context.Context) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "ok", nil
	}
	c := NewComposer(testSections(slow, slow, slow, slow)...)

	started := time.Now()
	c.Compose(context.Background(), "")
	assert.Less(t, time.Since(started), 700*time.Millisecond)
}
