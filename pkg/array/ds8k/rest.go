package ds8k

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// consts
const (
	apiPrefix   = "/api/v1"
	tokenHeader = "X-Auth-Token"

	statusOK      = "ok"
	statusWarning = "warning"
	statusFailed  = "failed"

	defaultRequestTimeout = 60 * time.Second
)

// RESTError is a failed DS8K REST request
type RESTError struct {
	Method     string
	Path       string
	HTTPStatus int
	Code       string
	Message    string
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("%s %s failed with %d, code %s: %s", e.Method, e.Path, e.HTTPStatus, e.Code, e.Message)
}

// Client calls the DS8K REST API. Results are the "data" member of the response.
type Client interface {
	Get(path string) (gjson.Result, error)
	Post(path string, params interface{}) (gjson.Result, error)
	Put(path string, params interface{}) (gjson.Result, error)
	Delete(path string) (gjson.Result, error)
	Alive() bool
	Close() error
}

type restClient struct {
	user     string
	password string
	baseURL  string

	httpClient *http.Client
	token      string
	dead       bool
	lock       sync.Mutex

	logger *log.Entry
}

// Dial logs in to the first endpoint accepting the credentials
func Dial(user string, password string, endpoints []string, port int) (Client, error) {
	transport := &http.Transport{
		// array management certificates are self-signed
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // nolint: gosec
	}
	var lastErr error
	for _, endpoint := range endpoints {
		baseURL := "https://" + net.JoinHostPort(endpoint, strconv.Itoa(port))
		client := newRESTClient(baseURL, user, password, &http.Client{Transport: transport, Timeout: defaultRequestTimeout})
		if err := client.login(); err != nil {
			client.logger.WithError(err).Warning("Failed to log in")
			lastErr = err
			continue
		}
		return client, nil
	}
	return nil, lastErr
}

func newRESTClient(baseURL string, user string, password string, httpClient *http.Client) *restClient {
	return &restClient{
		user:       user,
		password:   password,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log.WithFields(log.Fields{"Module": "DS8KREST", "endpoint": baseURL}),
	}
}

func (c *restClient) login() error {
	body := map[string]interface{}{
		"request": map[string]interface{}{
			"params": map[string]string{"username": c.user, "password": c.password},
		},
	}
	resp, err := c.send(http.MethodPost, "/tokens", body, false)
	if err != nil {
		return err
	}
	token := resp.Get("token.token").String()
	if token == "" {
		return fmt.Errorf("no token returned by %s", c.baseURL)
	}
	c.token = token
	return nil
}

func (c *restClient) Get(path string) (gjson.Result, error) {
	return c.call(http.MethodGet, path, nil)
}

func (c *restClient) Post(path string, params interface{}) (gjson.Result, error) {
	return c.call(http.MethodPost, path, params)
}

func (c *restClient) Put(path string, params interface{}) (gjson.Result, error) {
	return c.call(http.MethodPut, path, params)
}

func (c *restClient) Delete(path string) (gjson.Result, error) {
	return c.call(http.MethodDelete, path, nil)
}

func (c *restClient) Alive() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return !c.dead && c.token != ""
}

func (c *restClient) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dead || c.token == "" {
		c.dead = true
		return nil
	}
	_, err := c.send(http.MethodDelete, "/tokens/"+c.token, nil, true)
	c.dead = true
	c.token = ""
	return err
}

// call sends the request, logging in again once when the token expired
func (c *restClient) call(method string, path string, params interface{}) (gjson.Result, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.dead {
		return gjson.Result{}, fmt.Errorf("session to %s is closed", c.baseURL)
	}
	var body interface{}
	if params != nil {
		body = map[string]interface{}{"request": map[string]interface{}{"params": params}}
	}
	resp, err := c.send(method, path, body, true)
	if restErr, ok := err.(*RESTError); ok && restErr.HTTPStatus == http.StatusUnauthorized {
		c.logger.Debug("Token expired, logging in again")
		if err := c.login(); err != nil {
			return gjson.Result{}, err
		}
		resp, err = c.send(method, path, body, true)
	}
	if err != nil {
		return gjson.Result{}, err
	}
	return resp.Get("data"), nil
}

func (c *restClient) send(method string, path string, body interface{}, withToken bool) (gjson.Result, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if withToken {
		req.Header.Set(tokenHeader, c.token)
	}

	c.logger.WithFields(log.Fields{"method": method, "path": path}).Debug("Sending request")
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.dead = true
		return gjson.Result{}, err
	}
	defer httpResp.Body.Close()
	content, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.dead = true
		return gjson.Result{}, err
	}

	resp := gjson.ParseBytes(content)
	server := resp.Get("server")
	switch status := server.Get("status").String(); {
	case status == statusWarning:
		c.logger.WithFields(log.Fields{"path": path, "code": server.Get("code").String(), "message": server.Get("message").String()}).Warning("Request returned a warning")
	case status == statusFailed || httpResp.StatusCode >= http.StatusBadRequest:
		return gjson.Result{}, &RESTError{
			Method:     method,
			Path:       path,
			HTTPStatus: httpResp.StatusCode,
			Code:       server.Get("code").String(),
			Message:    server.Get("message").String(),
		}
	}
	return resp, nil
}
