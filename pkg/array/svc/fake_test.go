package svc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type fakeVDisk struct {
	id       int
	name     string
	uid      string
	capacity int64
	pool     string
	thin     bool
	mappings map[string]int
}

const fakeStartTime = "221115123456"

type fakeFCMap struct {
	id        int
	source    string
	target    string
	copyRate  string
	status    string
	startTime string
}

type fakeHost struct {
	id    int
	name  string
	wwpns []string
	iqns  []string
}

type fakeRelationship struct {
	id            int
	name          string
	master        string
	masterID      string
	aux           string
	auxCluster    string
	copyType      string
	state         string
	primary       string
	masterCluster string
}

// fakeSVC is an in-memory SVC CLI
type fakeSVC struct {
	systemID      string
	pools         map[string]bool
	vdisks        map[string]*fakeVDisk
	fcMaps        map[int]*fakeFCMap
	hosts         map[string]*fakeHost
	relationships map[string]*fakeRelationship
	nextID        int

	// mapCollisions makes the next mkvdiskhostmap calls fail with a LUN collision
	mapCollisions int
	failFCMap     bool

	commands []string
	closed   bool
	lock     sync.Mutex
}

func newFakeSVC() *fakeSVC {
	return &fakeSVC{
		systemID:      "0000020321E0A0C8",
		pools:         map[string]bool{"pool1": true},
		vdisks:        map[string]*fakeVDisk{},
		fcMaps:        map[int]*fakeFCMap{},
		hosts:         map[string]*fakeHost{},
		relationships: map[string]*fakeRelationship{},
	}
}

func (f *fakeSVC) addVDisk(name string, capacity int64) *fakeVDisk {
	f.nextID++
	vdisk := &fakeVDisk{
		id:       f.nextID,
		name:     name,
		uid:      fmt.Sprintf("60050768%024X", f.nextID),
		capacity: capacity,
		pool:     "pool1",
		mappings: map[string]int{},
	}
	f.vdisks[name] = vdisk
	return vdisk
}

func (f *fakeSVC) addHost(name string, wwpns []string, iqns []string) {
	f.nextID++
	f.hosts[name] = &fakeHost{id: f.nextID, name: name, wwpns: wwpns, iqns: iqns}
}

func (f *fakeSVC) vdiskByID(id string) *fakeVDisk {
	for _, vdisk := range f.vdisks {
		if strconv.Itoa(vdisk.id) == id {
			return vdisk
		}
	}
	return nil
}

// parsedCommand splits a command line built by Command into options, flags and positional arguments
type parsedCommand struct {
	opts  map[string]string
	flags map[string]bool
	args  []string
}

var valuelessFlags = map[string]bool{
	"thin": true, "compressed": true, "deduplicated": true, "autodelete": true,
	"force": true, "prep": true, "global": true, "bytes": true,
}

func parseCommand(cmd *Command) parsedCommand {
	p := parsedCommand{opts: map[string]string{}, flags: map[string]bool{}}
	for i := 0; i < len(cmd.args); i++ {
		arg := cmd.args[i]
		if strings.HasPrefix(arg, "-") {
			if !valuelessFlags[arg[1:]] && i+1 < len(cmd.args) {
				p.opts[arg[1:]] = unquote(cmd.args[i+1])
				i++
			} else {
				p.flags[arg[1:]] = true
			}
			continue
		}
		p.args = append(p.args, unquote(arg))
	}
	return p
}

func unquote(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "'"), "'")
	return strings.ReplaceAll(s, `'\''`, "'")
}

func (p parsedCommand) filter() (string, string) {
	parts := strings.SplitN(p.opts["filtervalue"], "=", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

func table(header []string, rows [][]string) string {
	lines := []string{strings.Join(header, outputDelimiter)}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, outputDelimiter))
	}
	return strings.Join(lines, "\n") + "\n"
}

func detail(pairs ...string) string {
	var lines []string
	for i := 0; i+1 < len(pairs); i += 2 {
		lines = append(lines, pairs[i]+outputDelimiter+pairs[i+1])
	}
	return strings.Join(lines, "\n") + "\n"
}

func cliErr(cmd *Command, code string) error {
	return &CLIError{Command: cmd.Name(), Code: code, Message: code + " failed"}
}

func (f *fakeSVC) Alive() bool {
	return !f.closed
}

func (f *fakeSVC) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSVC) called(name string) int {
	n := 0
	for _, c := range f.commands {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeSVC) Run(cmd *Command) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.commands = append(f.commands, cmd.Name())
	p := parseCommand(cmd)

	switch cmd.Name() {
	case "svcinfo lssystem":
		return detail("id", f.systemID, "name", "cluster1", "code_level", "8.4.0.0 (build 152.16.2009091545000)"), nil

	case "svcinfo lsvdisk":
		attribute, value := p.filter()
		header := []string{"id", "name", "IO_group_name", "mdisk_grp_name", "capacity", "vdisk_UID", "se_copy", "compressed_copy", "deduplicated_copy"}
		var rows [][]string
		for _, vdisk := range f.sortedVDisks() {
			if (attribute == "name" && vdisk.name == value) || (attribute == "vdisk_UID" && vdisk.uid == value) {
				thin := "no"
				if vdisk.thin {
					thin = "yes"
				}
				rows = append(rows, []string{strconv.Itoa(vdisk.id), vdisk.name, "io_grp0", vdisk.pool, strconv.FormatInt(vdisk.capacity, 10), vdisk.uid, thin, "no", "no"})
			}
		}
		if len(rows) == 0 {
			return "", nil
		}
		return table(header, rows), nil

	case "svctask mkvolume":
		name := p.opts["name"]
		if _, ok := f.vdisks[name]; ok {
			return "", cliErr(cmd, codeNameAlreadyExists)
		}
		if !f.pools[p.opts["pool"]] {
			return "", cliErr(cmd, codeObjectNotFound)
		}
		size, _ := strconv.ParseInt(p.opts["size"], 10, 64)
		vdisk := f.addVDisk(name, size)
		vdisk.thin = p.flags["thin"]
		return fmt.Sprintf("Volume, id [%d], successfully created\n", vdisk.id), nil

	case "svctask rmvolume":
		vdisk := f.vdiskByID(p.args[0])
		if vdisk == nil {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		delete(f.vdisks, vdisk.name)
		return "", nil

	case "svctask expandvdisksize":
		vdisk := f.vdiskByID(p.args[0])
		if vdisk == nil {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		delta, _ := strconv.ParseInt(p.opts["size"], 10, 64)
		vdisk.capacity += delta
		return "", nil

	case "svcinfo lsfcmap":
		attribute, value := p.filter()
		header := []string{"id", "name", "source_vdisk_name", "target_vdisk_name", "status", "copy_rate", "start_time"}
		var rows [][]string
		for _, fcMap := range f.sortedFCMaps() {
			if (attribute == "source_vdisk_name" && fcMap.source == value) || (attribute == "target_vdisk_name" && fcMap.target == value) {
				rows = append(rows, []string{strconv.Itoa(fcMap.id), fmt.Sprintf("fcmap%d", fcMap.id), fcMap.source, fcMap.target, fcMap.status, fcMap.copyRate, fcMap.startTime})
			}
		}
		if len(rows) == 0 {
			return "", nil
		}
		return table(header, rows), nil

	case "svctask mkfcmap":
		if f.failFCMap {
			return "", cliErr(cmd, "CMMVC5907E")
		}
		if f.vdisks[p.opts["source"]] == nil || f.vdisks[p.opts["target"]] == nil {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		f.nextID++
		f.fcMaps[f.nextID] = &fakeFCMap{id: f.nextID, source: p.opts["source"], target: p.opts["target"], copyRate: p.opts["copyrate"], status: "idle_or_copied"}
		return fmt.Sprintf("FlashCopy Mapping, id [%d], successfully created\n", f.nextID), nil

	case "svctask startfcmap":
		id, _ := strconv.Atoi(p.args[0])
		fcMap, ok := f.fcMaps[id]
		if !ok {
			return "", cliErr(cmd, codeFCMapDoesNotExist)
		}
		fcMap.status = "copying"
		fcMap.startTime = fakeStartTime
		return "", nil

	case "svctask stopfcmap":
		id, _ := strconv.Atoi(p.args[0])
		if fcMap, ok := f.fcMaps[id]; ok {
			fcMap.status = "stopped"
			return "", nil
		}
		return "", cliErr(cmd, codeFCMapDoesNotExist)

	case "svctask rmfcmap":
		id, _ := strconv.Atoi(p.args[0])
		if _, ok := f.fcMaps[id]; !ok {
			return "", cliErr(cmd, codeFCMapDoesNotExist)
		}
		delete(f.fcMaps, id)
		return "", nil

	case "svcinfo lsvdiskhostmap":
		vdisk := f.vdiskByID(p.args[0])
		if vdisk == nil {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		var rows [][]string
		for host, lun := range vdisk.mappings {
			rows = append(rows, []string{strconv.Itoa(vdisk.id), vdisk.name, strconv.Itoa(lun), host})
		}
		if len(rows) == 0 {
			return "", nil
		}
		return table([]string{"id", "name", "SCSI_id", "host_name"}, rows), nil

	case "svcinfo lshostvdiskmap":
		if _, ok := f.hosts[p.args[0]]; !ok {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		var rows [][]string
		for _, vdisk := range f.sortedVDisks() {
			if lun, ok := vdisk.mappings[p.args[0]]; ok {
				rows = append(rows, []string{p.args[0], strconv.Itoa(lun), vdisk.name})
			}
		}
		if len(rows) == 0 {
			return "", nil
		}
		return table([]string{"name", "SCSI_id", "vdisk_name"}, rows), nil

	case "svctask mkvdiskhostmap":
		if f.mapCollisions > 0 {
			f.mapCollisions--
			return "", cliErr(cmd, codeLUNAlreadyInUse)
		}
		host := p.opts["host"]
		if _, ok := f.hosts[host]; !ok {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		vdisk := f.vdiskByID(p.args[0])
		lun, _ := strconv.Atoi(p.opts["scsi"])
		vdisk.mappings[host] = lun
		return "Virtual Disk to Host map, id [0], successfully created\n", nil

	case "svctask rmvdiskhostmap":
		host := p.opts["host"]
		if _, ok := f.hosts[host]; !ok {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		vdisk := f.vdiskByID(p.args[0])
		if _, ok := vdisk.mappings[host]; !ok {
			return "", cliErr(cmd, codeNotMapped)
		}
		delete(vdisk.mappings, host)
		return "", nil

	case "svcinfo lshost":
		if len(p.args) == 1 {
			for _, host := range f.hosts {
				if strconv.Itoa(host.id) != p.args[0] {
					continue
				}
				pairs := []string{"id", strconv.Itoa(host.id), "name", host.name}
				for _, wwpn := range host.wwpns {
					pairs = append(pairs, "WWPN", wwpn, "node_logged_in_count", "1")
				}
				for _, iqn := range host.iqns {
					pairs = append(pairs, "iscsi_name", iqn)
				}
				return detail(pairs...), nil
			}
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		var rows [][]string
		for _, host := range f.hosts {
			rows = append(rows, []string{strconv.Itoa(host.id), host.name})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i][1] < rows[j][1] })
		return table([]string{"id", "name"}, rows), nil

	case "svcinfo lsportfc":
		return table([]string{"id", "WWPN", "status"}, [][]string{{"0", "500507680B21A2B3", "active"}}), nil

	case "svcinfo lsnode":
		return table([]string{"id", "name", "iscsi_name"}, [][]string{
			{"1", "node1", "iqn.1986-03.com.ibm:2145.cluster1.node1"},
			{"2", "node2", "iqn.1986-03.com.ibm:2145.cluster1.node2"},
		}), nil

	case "svcinfo lsportip":
		return table([]string{"id", "node_name", "IP_address"}, [][]string{
			{"1", "node1", "1.1.1.1"},
			{"2", "node1", ""},
			{"1", "node2", "2.2.2.2"},
		}), nil

	case "svcinfo lsrcrelationship":
		header := []string{"id", "name", "master_cluster_id", "master_vdisk_id", "master_vdisk_name", "aux_cluster_id", "aux_vdisk_id", "aux_vdisk_name", "primary", "state", "copy_type"}
		if len(p.args) == 1 {
			relationship, ok := f.relationships[p.args[0]]
			if !ok {
				return "", cliErr(cmd, codeObjectDoesNotExist)
			}
			row := f.relationshipRow(relationship)
			var pairs []string
			for i, key := range header {
				pairs = append(pairs, key, row[i])
			}
			return detail(pairs...), nil
		}
		attribute, value := p.filter()
		var rows [][]string
		for _, relationship := range f.relationships {
			if (attribute == "master_vdisk_name" && relationship.master == value) || (attribute == "aux_vdisk_name" && relationship.aux == value) {
				rows = append(rows, f.relationshipRow(relationship))
			}
		}
		if len(rows) == 0 {
			return "", nil
		}
		return table(header, rows), nil

	case "svctask mkrcrelationship":
		master := f.vdisks[p.opts["master"]]
		if master == nil {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		f.nextID++
		copyType := "metro"
		if p.flags["global"] {
			copyType = "global"
		}
		name := fmt.Sprintf("rcrel%d", f.nextID)
		f.relationships[name] = &fakeRelationship{
			id: f.nextID, name: name, master: master.name, masterID: strconv.Itoa(master.id),
			aux: p.opts["aux"], auxCluster: p.opts["cluster"], copyType: copyType,
			state: "inconsistent_stopped", primary: primaryMaster, masterCluster: f.systemID,
		}
		return fmt.Sprintf("RC Relationship, id [%d], successfully created\n", f.nextID), nil

	case "svctask startrcrelationship", "svctask switchrcrelationship":
		for _, relationship := range f.relationships {
			if relationship.name == p.args[0] || strconv.Itoa(relationship.id) == p.args[0] {
				relationship.primary = p.opts["primary"]
				relationship.state = relationshipStateSynchronized
				return "", nil
			}
		}
		return "", cliErr(cmd, codeObjectDoesNotExist)

	case "svctask rmrcrelationship":
		if _, ok := f.relationships[p.args[0]]; !ok {
			return "", cliErr(cmd, codeObjectDoesNotExist)
		}
		delete(f.relationships, p.args[0])
		return "", nil
	}
	return "", fmt.Errorf("unexpected command %s", cmd)
}

func (f *fakeSVC) relationshipRow(r *fakeRelationship) []string {
	return []string{strconv.Itoa(r.id), r.name, r.masterCluster, r.masterID, r.master, r.auxCluster, r.aux, "", r.primary, r.state, r.copyType}
}

func (f *fakeSVC) sortedVDisks() []*fakeVDisk {
	vdisks := make([]*fakeVDisk, 0, len(f.vdisks))
	for _, vdisk := range f.vdisks {
		vdisks = append(vdisks, vdisk)
	}
	sort.Slice(vdisks, func(i, j int) bool { return vdisks[i].id < vdisks[j].id })
	return vdisks
}

func (f *fakeSVC) sortedFCMaps() []*fakeFCMap {
	maps := make([]*fakeFCMap, 0, len(f.fcMaps))
	for _, fcMap := range f.fcMaps {
		maps = append(maps, fcMap)
	}
	sort.Slice(maps, func(i, j int) bool { return maps[i].id < maps[j].id })
	return maps
}
