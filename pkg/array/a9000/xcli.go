package a9000

import (
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// consts
const (
	codeSuccess = "SUCCESS"

	defaultDialTimeout    = 10 * time.Second
	defaultCommandTimeout = 60 * time.Second
)

// Record is one object returned by an XCLI command, e.g. a volume
type Record struct {
	Kind   string
	Fields map[string]string
}

// Get returns the value of a field, or empty if the record has none
func (r Record) Get(name string) string {
	return r.Fields[name]
}

// CommandError is a failed XCLI command
type CommandError struct {
	Command string
	Code    string
	Status  string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("xcli command %s failed, code %s: %s", e.Command, e.Code, e.Message)
}

// Client runs XCLI commands on one array
type Client interface {
	Run(command string, args ...Arg) ([]Record, error)
	Alive() bool
	Close() error
}

// Arg is one command argument
type Arg struct {
	Name  string
	Value string
}

// A builds an Arg
func A(name string, value interface{}) Arg {
	return Arg{Name: name, Value: fmt.Sprint(value)}
}

type xcliRequest struct {
	XMLName       xml.Name       `xml:"command"`
	ID            string         `xml:"id,attr"`
	Type          string         `xml:"type,attr"`
	CloseOnReturn string         `xml:"close_on_return,attr"`
	User          string         `xml:"user,attr"`
	Password      string         `xml:"passwd,attr"`
	Arguments     []xcliArgument `xml:"argument"`
}

type xcliArgument struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xcliResponse struct {
	XMLName xml.Name   `xml:"command"`
	ID      string     `xml:"id,attr"`
	Result  xcliResult `xml:"administrator>command"`
}

type xcliResult struct {
	Code      xcliValue   `xml:"code"`
	Status    xcliValue   `xml:"status"`
	StatusStr xcliValue   `xml:"status_str"`
	Warnings  []xcliValue `xml:"warning"`
	Return    xcliNode    `xml:"return"`
}

type xcliValue struct {
	Value string `xml:"value,attr"`
}

type xcliNode struct {
	XMLName xml.Name
	Value   string     `xml:"value,attr"`
	Nodes   []xcliNode `xml:",any"`
}

func (n xcliNode) records() []Record {
	records := make([]Record, 0, len(n.Nodes))
	for _, item := range n.Nodes {
		record := Record{Kind: item.XMLName.Local, Fields: make(map[string]string, len(item.Nodes))}
		for _, field := range item.Nodes {
			record.Fields[field.XMLName.Local] = field.Value
		}
		records = append(records, record)
	}
	return records
}

// xcliClient speaks XCLI XML over one TLS session. Commands are sent one at
// a time; the session is dead after any transport error.
type xcliClient struct {
	user     string
	password string
	endpoint string

	conn    net.Conn
	encoder *xml.Encoder
	decoder *xml.Decoder

	commandTimeout time.Duration
	nextID         int
	dead           bool
	lock           sync.Mutex

	logger *log.Entry
}

// Dial opens an XCLI session to the first reachable endpoint
func Dial(user string, password string, endpoints []string, port int) (Client, error) {
	var lastErr error
	for _, endpoint := range endpoints {
		address := net.JoinHostPort(endpoint, strconv.Itoa(port))
		dialer := &net.Dialer{Timeout: defaultDialTimeout}
		// array management certificates are self-signed
		conn, err := tls.DialWithDialer(dialer, "tcp", address, &tls.Config{InsecureSkipVerify: true}) // nolint: gosec
		if err != nil {
			log.WithField("endpoint", address).WithError(err).Warning("Failed to connect to XCLI endpoint")
			lastErr = err
			continue
		}
		return newXCLIClient(conn, user, password, endpoint), nil
	}
	return nil, lastErr
}

func newXCLIClient(conn net.Conn, user string, password string, endpoint string) *xcliClient {
	return &xcliClient{
		user:           user,
		password:       password,
		endpoint:       endpoint,
		conn:           conn,
		encoder:        xml.NewEncoder(conn),
		decoder:        xml.NewDecoder(conn),
		commandTimeout: defaultCommandTimeout,
		logger:         log.WithFields(log.Fields{"Module": "XCLI", "endpoint": endpoint}),
	}
}

func (c *xcliClient) Run(command string, args ...Arg) ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.dead {
		return nil, fmt.Errorf("xcli session to %s is closed", c.endpoint)
	}

	c.nextID++
	request := xcliRequest{
		ID:            strconv.Itoa(c.nextID),
		Type:          command,
		CloseOnReturn: "no",
		User:          c.user,
		Password:      c.password,
	}
	for _, arg := range args {
		request.Arguments = append(request.Arguments, xcliArgument(arg))
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.commandTimeout)); err != nil {
		c.dead = true
		return nil, err
	}
	c.logger.WithFields(log.Fields{"command": command, "args": args}).Debug("Running XCLI command")
	if err := c.encoder.Encode(&request); err != nil {
		c.dead = true
		return nil, err
	}
	response := xcliResponse{}
	if err := c.decoder.Decode(&response); err != nil {
		c.dead = true
		return nil, err
	}

	result := response.Result
	for _, warning := range result.Warnings {
		c.logger.WithFields(log.Fields{"command": command, "warning": warning.Value}).Warning("XCLI command returned a warning")
	}
	if result.Code.Value != codeSuccess {
		return nil, &CommandError{Command: command, Code: result.Code.Value, Status: result.Status.Value, Message: result.StatusStr.Value}
	}
	return result.Return.records(), nil
}

func (c *xcliClient) Alive() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return !c.dead
}

func (c *xcliClient) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.dead = true
	return c.conn.Close()
}
