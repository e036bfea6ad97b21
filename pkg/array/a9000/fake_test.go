package a9000

import (
	"fmt"
	"sync"
)

type fakeHandler func(args map[string]string) ([]Record, error)

// fakeClient answers XCLI commands from per-command handlers
type fakeClient struct {
	handlers map[string]fakeHandler
	calls    []string
	closed   bool
	lock     sync.Mutex
}

func newFakeClient() *fakeClient {
	c := &fakeClient{handlers: map[string]fakeHandler{}}
	c.on("config_get", func(map[string]string) ([]Record, error) {
		return []Record{
			rec("parameter", "name", "system_id", "value", "7801234"),
			rec("parameter", "name", "iscsi_name", "value", "iqn-of-array"),
		}, nil
	})
	return c
}

func (c *fakeClient) on(command string, handler fakeHandler) {
	c.handlers[command] = handler
}

func (c *fakeClient) Run(command string, args ...Arg) ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.calls = append(c.calls, command)
	handler, ok := c.handlers[command]
	if !ok {
		return nil, fmt.Errorf("unexpected command %s", command)
	}
	argMap := map[string]string{}
	for _, arg := range args {
		argMap[arg.Name] = arg.Value
	}
	return handler(argMap)
}

func (c *fakeClient) Alive() bool {
	return !c.closed
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

func (c *fakeClient) called(command string) int {
	n := 0
	for _, call := range c.calls {
		if call == command {
			n++
		}
	}
	return n
}

func rec(kind string, kv ...string) Record {
	record := Record{Kind: kind, Fields: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		record.Fields[kv[i]] = kv[i+1]
	}
	return record
}

func codeErr(command string, code string) error {
	return &CommandError{Command: command, Code: code, Message: code}
}

// fakeArray keeps volumes keyed by name behind vol_list
type fakeArray struct {
	volumes map[string]Record
}

func (a *fakeArray) volList(args map[string]string) ([]Record, error) {
	for _, record := range a.volumes {
		if (args["vol"] != "" && record.Get("name") == args["vol"]) || (args["wwn"] != "" && record.Get("wwn") == args["wwn"]) {
			return []Record{record}, nil
		}
	}
	if args["vol"] != "" {
		return nil, codeErr("vol_list", codeVolumeBadName)
	}
	return nil, nil
}
