package svc

import (
	"bytes"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// consts
const (
	outputDelimiter = "!"

	defaultDialTimeout = 10 * time.Second
)

var messageCodePattern = regexp.MustCompile(`CMMVC\d{4}[EW]`)

// CLIError is a failed CLI command
type CLIError struct {
	Command string
	Code    string
	Message string
}

func (e *CLIError) Error() string {
	return fmt.Sprintf("command %q failed, code %s: %s", e.Command, e.Code, e.Message)
}

// Client runs CLI commands over one SSH connection
type Client interface {
	Run(command *Command) (string, error)
	Alive() bool
	Close() error
}

// Command is a CLI command line with shell-quoted values
type Command struct {
	name string
	args []string
}

// NewCommand starts a command line, e.g. NewCommand("svcinfo lsvdisk")
func NewCommand(name string) *Command {
	return &Command{name: name}
}

// Flag adds a value-less option
func (c *Command) Flag(name string) *Command {
	c.args = append(c.args, "-"+name)
	return c
}

// Opt adds an option with a value
func (c *Command) Opt(name string, value interface{}) *Command {
	c.args = append(c.args, "-"+name, quote(fmt.Sprint(value)))
	return c
}

// Arg adds a positional argument
func (c *Command) Arg(value interface{}) *Command {
	c.args = append(c.args, quote(fmt.Sprint(value)))
	return c
}

// Filter adds a -filtervalue on one attribute
func (c *Command) Filter(attribute string, value string) *Command {
	return c.Opt("filtervalue", attribute+"="+value)
}

// Name of the command without arguments
func (c *Command) Name() string {
	return c.name
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// Info builds a delimited svcinfo listing command
func Info(name string) *Command {
	return NewCommand("svcinfo "+name).Opt("delim", outputDelimiter)
}

// Task builds an svctask command
func Task(name string) *Command {
	return NewCommand("svctask " + name)
}

// Record is one row of a concise listing
type Record map[string]string

// ParseTable parses a concise listing: a header line followed by one line per object
func ParseTable(output string) []Record {
	lines := nonEmptyLines(output)
	if len(lines) < 2 {
		return nil
	}
	header := strings.Split(lines[0], outputDelimiter)
	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := strings.Split(line, outputDelimiter)
		record := make(Record, len(header))
		for i, key := range header {
			if i < len(values) {
				record[key] = values[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// ParseDetail parses a detailed view of one object, in which attributes such as ports may repeat
func ParseDetail(output string) map[string][]string {
	detail := map[string][]string{}
	for _, line := range nonEmptyLines(output) {
		parts := strings.SplitN(line, outputDelimiter, 2)
		if len(parts) != 2 {
			continue
		}
		detail[parts[0]] = append(detail[parts[0]], parts[1])
	}
	return detail
}

// ParseCreatedID reads the id out of "Volume, id [5], successfully created"
func ParseCreatedID(output string) (string, error) {
	start := strings.Index(output, "[")
	end := strings.Index(output, "]")
	if start < 0 || end < start {
		return "", fmt.Errorf("no object id in %q", output)
	}
	return output[start+1 : end], nil
}

func nonEmptyLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// newCLIError picks the first error code out of the command output
func newCLIError(command *Command, stderr string) *CLIError {
	message := strings.TrimSpace(stderr)
	code := ""
	for _, c := range messageCodePattern.FindAllString(message, -1) {
		if strings.HasSuffix(c, "E") {
			code = c
			break
		}
	}
	return &CLIError{Command: command.Name(), Code: code, Message: message}
}

// HostKeyCallback verifies array host keys; arrays are addressed by the
// management addresses of the secret, so any key is accepted by default
var HostKeyCallback = ssh.InsecureIgnoreHostKey() // nolint: gosec

type sshClient struct {
	client   *ssh.Client
	endpoint string
	dead     bool
	lock     sync.Mutex

	logger *log.Entry
}

// Dial opens an SSH connection to the first reachable endpoint
func Dial(user string, password string, endpoints []string, port int) (Client, error) {
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_ string, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: HostKeyCallback,
		Timeout:         defaultDialTimeout,
	}
	var lastErr error
	for _, endpoint := range endpoints {
		address := net.JoinHostPort(endpoint, strconv.Itoa(port))
		client, err := ssh.Dial("tcp", address, config)
		if err != nil {
			log.WithField("endpoint", address).WithError(err).Warning("Failed to connect over SSH")
			lastErr = err
			continue
		}
		return &sshClient{
			client:   client,
			endpoint: endpoint,
			logger:   log.WithFields(log.Fields{"Module": "SVCCLI", "endpoint": endpoint}),
		}, nil
	}
	return nil, lastErr
}

func (c *sshClient) Run(command *Command) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.dead {
		return "", fmt.Errorf("ssh connection to %s is closed", c.endpoint)
	}
	session, err := c.client.NewSession()
	if err != nil {
		c.dead = true
		return "", err
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	c.logger.WithField("command", command.String()).Debug("Running command")
	err = session.Run(command.String())

	for _, code := range messageCodePattern.FindAllString(stderr.String()+stdout.String(), -1) {
		if strings.HasSuffix(code, "W") {
			c.logger.WithFields(log.Fields{"command": command.Name(), "code": code}).Warning("Command returned a warning")
		}
	}
	if err != nil {
		if _, ok := err.(*ssh.ExitError); ok {
			return "", newCLIError(command, stderr.String())
		}
		c.dead = true
		return "", err
	}
	return stdout.String(), nil
}

// Alive sends a keepalive over the connection
func (c *sshClient) Alive() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.dead {
		return false
	}
	if _, _, err := c.client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
		c.dead = true
	}
	return !c.dead
}

func (c *sshClient) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.dead = true
	return c.client.Close()
}
