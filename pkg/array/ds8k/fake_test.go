package ds8k

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

type fakeVolume struct {
	ID   string
	Name string
	Cap  int64
	Pool string
	TP   string
}

type fakeFlashCopy struct {
	Source string
	Target string
}

type fakeHost struct {
	WWPNs    []string
	Mappings map[int]string
}

// fakeDS8K is an in-memory DS8K REST API
type fakeDS8K struct {
	server *httptest.Server

	user     string
	password string
	token    string
	release  string
	tokens   int

	pools       map[string]bool
	volumes     map[string]*fakeVolume
	flashCopies []fakeFlashCopy
	hosts       map[string]*fakeHost
	nextVolume  int

	failFlashCopy bool
	// flashCopyState overrides the reported relation state when set
	flashCopyState string

	lock sync.Mutex
}

func newFakeDS8K(t *testing.T) *fakeDS8K {
	f := &fakeDS8K{
		user:     "admin",
		password: "secret",
		release:  "8.5.0",
		pools:    map[string]bool{"P0": true},
		volumes:  map[string]*fakeVolume{},
		hosts:    map[string]*fakeHost{},
	}
	router := mux.NewRouter()
	api := router.PathPrefix(apiPrefix).Subrouter()
	api.HandleFunc("/tokens", f.login).Methods(http.MethodPost)
	api.HandleFunc("/tokens/{token}", f.authorized(f.logout)).Methods(http.MethodDelete)
	api.HandleFunc("/systems", f.authorized(f.systems)).Methods(http.MethodGet)
	api.HandleFunc("/pools/{pool}/volumes", f.authorized(f.poolVolumes)).Methods(http.MethodGet)
	api.HandleFunc("/volumes", f.authorized(f.createVolume)).Methods(http.MethodPost)
	api.HandleFunc("/volumes/{id}", f.authorized(f.getVolume)).Methods(http.MethodGet)
	api.HandleFunc("/volumes/{id}", f.authorized(f.resizeVolume)).Methods(http.MethodPut)
	api.HandleFunc("/volumes/{id}", f.authorized(f.deleteVolume)).Methods(http.MethodDelete)
	api.HandleFunc("/volumes/{id}/flashcopy", f.authorized(f.volumeFlashCopies)).Methods(http.MethodGet)
	api.HandleFunc("/cs/flashcopies", f.authorized(f.createFlashCopy)).Methods(http.MethodPost)
	api.HandleFunc("/cs/flashcopies/{id}", f.authorized(f.deleteFlashCopy)).Methods(http.MethodDelete)
	api.HandleFunc("/hosts", f.authorized(f.listHosts)).Methods(http.MethodGet)
	api.HandleFunc("/hosts/{host}/mappings", f.authorized(f.hostMappings)).Methods(http.MethodGet)
	api.HandleFunc("/hosts/{host}/mappings", f.authorized(f.mapVolume)).Methods(http.MethodPost)
	api.HandleFunc("/hosts/{host}/mappings/{lunid}", f.authorized(f.unmapVolume)).Methods(http.MethodDelete)
	api.HandleFunc("/ioports", f.authorized(f.ioports)).Methods(http.MethodGet)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDS8K) client() *restClient {
	return newRESTClient(f.server.URL, f.user, f.password, f.server.Client())
}

func (f *fakeDS8K) addVolume(name string, capacity int64, pool string) string {
	f.nextVolume++
	id := fmt.Sprintf("%04X", f.nextVolume)
	f.volumes[id] = &fakeVolume{ID: id, Name: name, Cap: capacity, Pool: pool, TP: thickProvisioned}
	return id
}

func (f *fakeDS8K) authorized(handler func(http.ResponseWriter, *http.Request, requestParams)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.lock.Lock()
		defer f.lock.Unlock()
		if r.Header.Get(tokenHeader) == "" || r.Header.Get(tokenHeader) != f.token {
			writeFailure(w, http.StatusUnauthorized, "BE7A0027", "token expired")
			return
		}
		params := requestParams{}
		if r.Body != nil {
			body := struct {
				Request struct {
					Params map[string]interface{} `json:"params"`
				} `json:"request"`
			}{}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				params = body.Request.Params
			}
		}
		handler(w, r, params)
	}
}

type requestParams map[string]interface{}

func (p requestParams) str(key string) string {
	v, _ := p[key].(string)
	return v
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": map[string]string{"status": statusOK},
		"data":   data,
	})
}

func writeFailure(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": map[string]string{"status": statusFailed, "code": code, "message": message},
	})
}

func (f *fakeDS8K) login(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	body := struct {
		Request struct {
			Params map[string]string `json:"params"`
		} `json:"request"`
	}{}
	json.NewDecoder(r.Body).Decode(&body)
	if body.Request.Params["username"] != f.user || body.Request.Params["password"] != f.password {
		writeFailure(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
		return
	}
	f.tokens++
	f.token = "token-" + strconv.Itoa(f.tokens)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": map[string]string{"status": statusOK},
		"token":  map[string]string{"token": f.token},
	})
}

func (f *fakeDS8K) logout(w http.ResponseWriter, r *http.Request, _ requestParams) {
	f.token = ""
	writeData(w, http.StatusOK, nil)
}

func (f *fakeDS8K) systems(w http.ResponseWriter, r *http.Request, _ requestParams) {
	writeData(w, http.StatusOK, map[string]interface{}{
		"systems": []map[string]string{{"id": "2107-75ABC01", "release": f.release}},
	})
}

func (f *fakeDS8K) volumeJSON(v *fakeVolume) map[string]interface{} {
	return map[string]interface{}{
		"id":   v.ID,
		"name": v.Name,
		"cap":  strconv.FormatInt(v.Cap, 10),
		"pool": map[string]string{"id": v.Pool},
		"tp":   v.TP,
	}
}

func (f *fakeDS8K) sortedVolumes() []*fakeVolume {
	volumes := make([]*fakeVolume, 0, len(f.volumes))
	for _, v := range f.volumes {
		volumes = append(volumes, v)
	}
	sort.Slice(volumes, func(i, j int) bool { return volumes[i].ID < volumes[j].ID })
	return volumes
}

func (f *fakeDS8K) poolVolumes(w http.ResponseWriter, r *http.Request, _ requestParams) {
	pool := mux.Vars(r)["pool"]
	if !f.pools[pool] {
		writeFailure(w, http.StatusNotFound, codePoolNotFound, "pool not found")
		return
	}
	volumes := []map[string]interface{}{}
	for _, v := range f.sortedVolumes() {
		if v.Pool == pool {
			volumes = append(volumes, f.volumeJSON(v))
		}
	}
	writeData(w, http.StatusOK, map[string]interface{}{"volumes": volumes})
}

func (f *fakeDS8K) createVolume(w http.ResponseWriter, r *http.Request, params requestParams) {
	pool := params.str("pool")
	if !f.pools[pool] {
		writeFailure(w, http.StatusNotFound, codePoolNotFound, "pool not found")
		return
	}
	capacity, _ := strconv.ParseInt(params.str("cap"), 10, 64)
	id := f.addVolume(params.str("name"), capacity, pool)
	f.volumes[id].TP = params.str("tp")
	writeData(w, http.StatusCreated, map[string]interface{}{"volumes": []interface{}{f.volumeJSON(f.volumes[id])}})
}

func (f *fakeDS8K) getVolume(w http.ResponseWriter, r *http.Request, _ requestParams) {
	v, ok := f.volumes[mux.Vars(r)["id"]]
	if !ok {
		writeFailure(w, http.StatusNotFound, codeVolumeNotFound, "volume not found")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"volumes": []interface{}{f.volumeJSON(v)}})
}

func (f *fakeDS8K) resizeVolume(w http.ResponseWriter, r *http.Request, params requestParams) {
	v, ok := f.volumes[mux.Vars(r)["id"]]
	if !ok {
		writeFailure(w, http.StatusNotFound, codeVolumeNotFound, "volume not found")
		return
	}
	v.Cap, _ = strconv.ParseInt(params.str("cap"), 10, 64)
	writeData(w, http.StatusOK, nil)
}

func (f *fakeDS8K) deleteVolume(w http.ResponseWriter, r *http.Request, _ requestParams) {
	id := mux.Vars(r)["id"]
	if _, ok := f.volumes[id]; !ok {
		writeFailure(w, http.StatusNotFound, codeVolumeNotFound, "volume not found")
		return
	}
	delete(f.volumes, id)
	writeData(w, http.StatusOK, nil)
}

func (f *fakeDS8K) volumeFlashCopies(w http.ResponseWriter, r *http.Request, _ requestParams) {
	id := mux.Vars(r)["id"]
	if _, ok := f.volumes[id]; !ok {
		writeFailure(w, http.StatusNotFound, codeVolumeNotFound, "volume not found")
		return
	}
	state := flashCopyStateValid
	if f.flashCopyState != "" {
		state = f.flashCopyState
	}
	relations := []map[string]interface{}{}
	for _, fc := range f.flashCopies {
		if fc.Source == id || fc.Target == id {
			relations = append(relations, map[string]interface{}{
				"id":           fc.Source + ":" + fc.Target,
				"sourcevolume": map[string]string{"id": fc.Source},
				"targetvolume": map[string]string{"id": fc.Target},
				"state":        state,
			})
		}
	}
	writeData(w, http.StatusOK, map[string]interface{}{"flashcopies": relations})
}

func (f *fakeDS8K) createFlashCopy(w http.ResponseWriter, r *http.Request, params requestParams) {
	if f.failFlashCopy {
		writeFailure(w, http.StatusInternalServerError, "BE742607", "flashcopy failed")
		return
	}
	pairs, _ := params["volume_pairs"].([]interface{})
	for _, pair := range pairs {
		p, _ := pair.(map[string]interface{})
		source, _ := p["source_volume"].(string)
		target, _ := p["target_volume"].(string)
		if _, ok := f.volumes[source]; !ok {
			writeFailure(w, http.StatusNotFound, codeVolumeNotFound, "volume not found")
			return
		}
		f.flashCopies = append(f.flashCopies, fakeFlashCopy{Source: source, Target: target})
	}
	writeData(w, http.StatusCreated, nil)
}

func (f *fakeDS8K) deleteFlashCopy(w http.ResponseWriter, r *http.Request, _ requestParams) {
	id := mux.Vars(r)["id"]
	for i, fc := range f.flashCopies {
		if fc.Source+":"+fc.Target == id {
			f.flashCopies = append(f.flashCopies[:i], f.flashCopies[i+1:]...)
			writeData(w, http.StatusOK, nil)
			return
		}
	}
	writeFailure(w, http.StatusNotFound, codeFlashCopyNotFound, "flashcopy not found")
}

func (f *fakeDS8K) listHosts(w http.ResponseWriter, r *http.Request, _ requestParams) {
	names := make([]string, 0, len(f.hosts))
	for name := range f.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	hosts := []map[string]interface{}{}
	for _, name := range names {
		host := f.hosts[name]
		ports := []map[string]string{}
		for _, wwpn := range host.WWPNs {
			ports = append(ports, map[string]string{"wwpn": wwpn})
		}
		mappings := []map[string]string{}
		for lun, volume := range host.Mappings {
			mappings = append(mappings, map[string]string{"lunid": fmt.Sprintf("%02x", lun), "volume_id": volume})
		}
		hosts = append(hosts, map[string]interface{}{"name": name, "host_ports_briefs": ports, "mappings_briefs": mappings})
	}
	writeData(w, http.StatusOK, map[string]interface{}{"hosts": hosts})
}

func (f *fakeDS8K) hostMappings(w http.ResponseWriter, r *http.Request, _ requestParams) {
	host, ok := f.hosts[mux.Vars(r)["host"]]
	if !ok {
		writeFailure(w, http.StatusNotFound, codeHostNotFound, "host not found")
		return
	}
	mappings := []map[string]interface{}{}
	for lun, volume := range host.Mappings {
		mappings = append(mappings, map[string]interface{}{"lunid": fmt.Sprintf("%02x", lun), "volume": map[string]string{"id": volume}})
	}
	writeData(w, http.StatusOK, map[string]interface{}{"mappings": mappings})
}

func (f *fakeDS8K) mapVolume(w http.ResponseWriter, r *http.Request, params requestParams) {
	host, ok := f.hosts[mux.Vars(r)["host"]]
	if !ok {
		writeFailure(w, http.StatusNotFound, codeHostNotFound, "host not found")
		return
	}
	volumes, _ := params["volumes"].([]interface{})
	volume, _ := volumes[0].(string)
	lun := 0
	for {
		if _, used := host.Mappings[lun]; !used {
			break
		}
		lun++
	}
	host.Mappings[lun] = volume
	writeData(w, http.StatusCreated, map[string]interface{}{"mappings": []map[string]string{{"lunid": fmt.Sprintf("%02x", lun)}}})
}

func (f *fakeDS8K) unmapVolume(w http.ResponseWriter, r *http.Request, _ requestParams) {
	host, ok := f.hosts[mux.Vars(r)["host"]]
	if !ok {
		writeFailure(w, http.StatusNotFound, codeHostNotFound, "host not found")
		return
	}
	lun, _ := strconv.ParseInt(mux.Vars(r)["lunid"], 16, 32)
	delete(host.Mappings, int(lun))
	writeData(w, http.StatusOK, nil)
}

func (f *fakeDS8K) ioports(w http.ResponseWriter, r *http.Request, _ requestParams) {
	writeData(w, http.StatusOK, map[string]interface{}{"ioports": []map[string]string{
		{"wwpn": "50050763060B1234", "state": "online"},
		{"wwpn": "50050763060B5678", "state": "offline"},
	}})
}
