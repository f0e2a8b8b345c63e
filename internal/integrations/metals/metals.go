package metals

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/jdmdelivery/pawn-service/internal/config"
)

// goldCode is gold's metal code in the central bank precious-metals feed.
const goldCode = "1"

// Client fetches the reference gold price used to suggest appraisals.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new metals feed client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.MetalsURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetch requests the last 30 days of quotes from the feed.
func (c *Client) fetch() ([]byte, error) {
	from := time.Now().AddDate(0, 0, -30).Format("02/01/2006")
	to := time.Now().Format("02/01/2006")
	url := fmt.Sprintf("%s?date_req1=%s&date_req2=%s", c.url, from, to)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("Metals XML response: %s", string(body))
	return body, nil
}

// parseGoldRate extracts the most recent gold buy quote from the feed XML.
// The feed uses comma decimal separators.
func parseGoldRate(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	records := doc.FindElements(fmt.Sprintf("//Record[@Code='%s']", goldCode))
	if len(records) == 0 {
		return 0, fmt.Errorf("no gold quotes found in XML")
	}

	latest := records[len(records)-1]
	buyElement := latest.FindElement("./Buy")
	if buyElement == nil {
		return 0, fmt.Errorf("buy element not found in XML")
	}

	text := strings.ReplaceAll(strings.TrimSpace(buyElement.Text()), ",", ".")
	rate, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse rate %q: %v", text, err)
	}
	return rate, nil
}

// GetGoldRate retrieves the latest reference gold price per gram.
func (c *Client) GetGoldRate() (float64, error) {
	body, err := c.fetch()
	if err != nil {
		return 0, err
	}

	rate, err := parseGoldRate(body)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved gold rate: %.2f per gram", rate)
	return rate, nil
}
