package clients

import (
	"io"
	"io/ioutil"
	"net/http"
	"time"

	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/pkg/errors"
)

// HttpClient wraps the default client with shared headers, cookies and a
// per-client timeout so each upstream source can carry its own budget.
type HttpClient struct {
	header  http.Header
	cookies []http.Cookie

	client *http.Client
}

func NewHttpClient(header http.Header, cookies []http.Cookie, timeout time.Duration) *HttpClient {
	return &HttpClient{header: header, cookies: cookies, client: &http.Client{Timeout: timeout}}
}

func (c *HttpClient) Get(uri string) (*http.Response, error) {
	req, err := http.NewRequest("GET", uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header = c.header
	for _, cookie := range c.cookies {
		req.AddCookie(&cookie)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if IsNon200HttpResponse(res) {
		MaybeLogNon200HttpError(res)
		return nil, errors.Errorf("non-200 http code: %d", res.StatusCode)
	}

	return res, nil
}

func (c *HttpClient) Post(uri string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest("POST", uri, body)
	if err != nil {
		return nil, err
	}
	req.Header = c.header
	req.Header.Set("Content-Type", contentType)
	for _, cookie := range c.cookies {
		req.AddCookie(&cookie)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if IsNon200HttpResponse(res) {
		MaybeLogNon200HttpError(res)
		return nil, errors.Errorf("non-200 http code: %d", res.StatusCode)
	}

	return res, nil
}

// Log http response if the error code is not 2XX
func MaybeLogNon200HttpError(res *http.Response) {
	if IsNon200HttpResponse(res) {
		Logger.Log.Errorf("non-200 http code: %d", res.StatusCode)
		LogHttpResponseBody(res)
	}
}

func IsNon200HttpResponse(res *http.Response) bool {
	return res.StatusCode >= 300
}

func LogHttpResponseBody(res *http.Response) {
	body, err := ioutil.ReadAll(res.Body)
	if err == nil {
		Logger.Log.Errorln("response body is: ", string(body))
	}
}
