package host

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/hack-pad/palmshim/internal/resourcefs"
)

// Banner is a notification posted with addBannerMessage.
type Banner struct {
	ID            string
	Message       string
	Params        string
	Icon          string
	SoundClass    string
	SoundFile     string
	Duration      int
	DoNotSuppress bool
}

type WindowState struct {
	Visible    bool
	Stage      string
	KeepAlive  bool
	FullScreen bool
}

type palmSystemExtension struct {
	ctx            context.Context
	fs             hackpadfs.FS
	resources      *ResourceLoader
	firstUseMarker string

	mu           sync.Mutex
	props        palmsystem.Properties
	listeners    []native.Callback
	banners      map[string]Banner
	lastBannerID int
	window       WindowState
	recorded     map[string]int
}

func newPalmSystemExtension(ctx context.Context, cfg *config.Config, app AppInfo, fs hackpadfs.FS, resources *ResourceLoader) *palmSystemExtension {
	return &palmSystemExtension{
		ctx:            ctx,
		fs:             fs,
		resources:      resources,
		firstUseMarker: cfg.Resources.FirstUseMarker,
		props:          initialProperties(cfg, app),
		banners:        make(map[string]Banner),
		window:         WindowState{Visible: !app.NoWindow},
		recorded:       make(map[string]int),
	}
}

func initialProperties(cfg *config.Config, app AppInfo) palmsystem.Properties {
	props := palmsystem.DefaultProperties()
	props.LaunchParams = cfg.App.Parameters
	props.Identifier = app.ID + " " + cfg.App.ProcessID
	props.ActivityID = cfg.App.ActivityID
	props.Version = cfg.Properties.Version
	if props.Version == "" {
		props.Version = app.Version
	}
	props.Locale = cfg.Properties.Locale
	props.LocaleRegion = cfg.Properties.LocaleRegion
	props.PhoneRegion = cfg.Properties.PhoneRegion
	props.TimeFormat = cfg.Properties.TimeFormat
	props.TimeZone = cfg.Properties.TimeZone
	props.IsMinimal = cfg.Properties.IsMinimal
	props.ScreenOrientation = cfg.Properties.ScreenOrientation
	props.WindowOrientation = cfg.Properties.WindowOrientation
	props.SpecifiedWindowOrientation = cfg.Properties.WindowOrientation
	props.DeviceInfo = DeviceInfo(cfg.Properties).String()
	return props
}

func (p *palmSystemExtension) exec(req request) {
	switch req.operation {
	case native.OpInitializeProperties:
		p.mu.Lock()
		bundle := toJSON(p.props)
		p.mu.Unlock()
		req.reply(bundle)
	case native.OpRegisterPropertyChangeHandler:
		if req.success == nil {
			return
		}
		p.mu.Lock()
		p.listeners = append(p.listeners, req.success)
		p.mu.Unlock()
	case "getProperty":
		p.getProperty(req)
	case native.OpSetProperty:
		name, ok := native.ArgString(req.args, 0)
		if !ok {
			log.Warn("host: setProperty without a property name")
			return
		}
		p.setProperty(palmsystem.Name(name), native.Arg(req.args, 1))
	case "setWindowOrientation":
		p.setProperty(palmsystem.WindowOrientation, native.Arg(req.args, 0))
	case "activate", "deactivate":
		p.setProperty(palmsystem.IsActivated, req.operation == "activate")
	case "removeBannerMessage":
		id := toString(native.Arg(req.args, 0))
		p.mu.Lock()
		delete(p.banners, id)
		p.mu.Unlock()
	case "clearBannerMessages":
		p.mu.Lock()
		p.banners = make(map[string]Banner)
		p.mu.Unlock()
	case "markFirstUseDone":
		if err := resourcefs.Touch(p.fs, p.firstUseMarker); err != nil {
			log.Error("host: markFirstUseDone: ", err)
		}
	case "show", "hide":
		p.updateWindow(func(w *WindowState) { w.Visible = req.operation == "show" })
	case "stagePreparing":
		p.updateWindow(func(w *WindowState) { w.Stage = "preparing" })
	case "stageReady":
		p.updateWindow(func(w *WindowState) { w.Stage = "ready" })
	case "keepAlive":
		p.updateWindow(func(w *WindowState) { w.KeepAlive = native.ArgBool(req.args, 0) })
	case "enableFullScreenMode":
		p.updateWindow(func(w *WindowState) { w.FullScreen = native.ArgBool(req.args, 0) })
	default:
		p.record(req.operation, req.args)
	}
}

func (p *palmSystemExtension) execSync(operation string, args []interface{}) (string, error) {
	switch operation {
	case native.OpGetActivityID:
		p.mu.Lock()
		defer p.mu.Unlock()
		return strconv.Itoa(p.props.ActivityID), nil
	case native.OpGetResource:
		return p.getResource(args), nil
	case "getIdentifierForFrame":
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.props.Identifier, nil
	case "addBannerMessage":
		return p.addBanner(args), nil
	default:
		p.record(operation, args)
		return "{}", nil
	}
}

func (p *palmSystemExtension) getProperty(req request) {
	name, _ := native.ArgString(req.args, 0)
	p.mu.Lock()
	defer p.mu.Unlock()
	switch palmsystem.Name(name) {
	case palmsystem.LaunchParams:
		req.reply(p.props.LaunchParams)
	case palmsystem.Identifier:
		req.reply(p.props.Identifier)
	case palmsystem.ActivityID:
		req.reply(strconv.Itoa(p.props.ActivityID))
	default:
		log.Debugf("host: getProperty %q is not supported", name)
	}
}

// setProperty stores value and pushes the stored form to every registered listener.
func (p *palmSystemExtension) setProperty(name palmsystem.Name, value interface{}) {
	p.mu.Lock()
	if err := p.props.Set(name, value); err != nil {
		p.mu.Unlock()
		log.Warn("host: setProperty: ", err)
		return
	}
	stored, _ := p.props.Get(name)
	listeners := append([]native.Callback(nil), p.listeners...)
	p.mu.Unlock()

	for _, listener := range listeners {
		listener(string(name), stored)
	}
}

func (p *palmSystemExtension) getResource(args []interface{}) string {
	if len(args) != 2 {
		return ""
	}
	path, ok := args[0].(string)
	if !ok {
		return ""
	}
	data, err := p.resources.Load(p.ctx, path)
	if err != nil {
		log.Debug("host: getResource: ", err)
		return ""
	}
	return string(data)
}

func (p *palmSystemExtension) addBanner(args []interface{}) string {
	duration, _ := native.ArgInt(args, 5)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastBannerID++
	banner := Banner{
		ID:            strconv.Itoa(p.lastBannerID),
		Message:       toString(native.Arg(args, 0)),
		Params:        toString(native.Arg(args, 1)),
		Icon:          toString(native.Arg(args, 2)),
		SoundClass:    toString(native.Arg(args, 3)),
		SoundFile:     toString(native.Arg(args, 4)),
		Duration:      duration,
		DoNotSuppress: native.ArgBool(args, 6),
	}
	p.banners[banner.ID] = banner
	log.Printf("host: banner %s: %s", banner.ID, banner.Message)
	return banner.ID
}

func (p *palmSystemExtension) bannerList() []Banner {
	p.mu.Lock()
	defer p.mu.Unlock()
	banners := make([]Banner, 0, len(p.banners))
	for _, b := range p.banners {
		banners = append(banners, b)
	}
	sort.Slice(banners, func(a, b int) bool {
		idA, _ := strconv.Atoi(banners[a].ID)
		idB, _ := strconv.Atoi(banners[b].ID)
		return idA < idB
	})
	return banners
}

func (p *palmSystemExtension) updateWindow(fn func(*WindowState)) {
	p.mu.Lock()
	fn(&p.window)
	p.mu.Unlock()
}

func (p *palmSystemExtension) windowState() WindowState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

func (p *palmSystemExtension) record(operation string, args []interface{}) {
	log.Debugf("host: PalmSystem.%s%v", operation, args)
	p.mu.Lock()
	p.recorded[operation]++
	p.mu.Unlock()
}

func (p *palmSystemExtension) recordedCommands() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	commands := make(map[string]int, len(p.recorded))
	for name, count := range p.recorded {
		commands[name] = count
	}
	return commands
}

func toString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return toJSON(v)
	}
}
