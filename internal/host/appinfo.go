package host

import (
	"encoding/json"
	gofs "io/fs"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/common"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/pkg/errors"
)

const (
	fileScheme  = "file://"
	DefaultIcon = fileScheme + "/usr/share/palmshim/images/default-app-icon.png"
)

var privilegedIDPrefixes = []string{"org.webosports", "com.palm", "org.webosinternals"}

// AppInfo is the parsed appinfo.json of the hosted application.
type AppInfo struct {
	ID       string
	Title    string
	Version  string
	Main     string
	Icon     string
	NoWindow bool
	// Dir is the directory appinfo.json was read from.
	Dir string
}

// Privileged reports whether the app may read system-only resource locations.
func (a AppInfo) Privileged() bool {
	for _, prefix := range privilegedIDPrefixes {
		if strings.HasPrefix(a.ID, prefix) {
			return true
		}
	}
	return false
}

// LoadAppInfo reads and parses the app description at p.
func LoadAppInfo(fs hackpadfs.FS, p string) (AppInfo, error) {
	name := common.ResolvePath("/", common.StripFileScheme(p))
	data, err := gofs.ReadFile(fs, name)
	if err != nil {
		return AppInfo{Icon: DefaultIcon}, errors.Wrap(err, "read app description")
	}
	return ParseAppInfo(fs, "/"+path.Dir(name), data)
}

// ParseAppInfo decodes an app description. Fields with the wrong JSON type are ignored.
// Relative icon and main paths are resolved against dir, and an icon that does not exist
// in fs is replaced with DefaultIcon.
func ParseAppInfo(fs hackpadfs.FS, dir string, data []byte) (AppInfo, error) {
	info := AppInfo{Dir: dir, Icon: DefaultIcon}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return info, errors.Wrap(err, "parse app description")
	}

	info.ID, _ = raw["id"].(string)
	info.Title, _ = raw["title"].(string)
	info.Version, _ = raw["version"].(string)
	info.NoWindow, _ = raw["noWindow"].(bool)
	if main, ok := raw["main"].(string); ok {
		info.Main = fileURL(dir, main)
	}
	if icon, ok := raw["icon"].(string); ok && icon != "" {
		iconURL := fileURL(dir, icon)
		if fs != nil && exists(fs, iconURL) {
			info.Icon = iconURL
		} else {
			log.Debugf("host: icon %q not found, using default", icon)
		}
	}
	return info, nil
}

func fileURL(dir, p string) string {
	p = common.StripFileScheme(p)
	if !path.IsAbs(p) {
		p = path.Join(dir, p)
	}
	return fileScheme + p
}

func exists(fs hackpadfs.FS, fileURL string) bool {
	_, err := hackpadfs.Stat(fs, common.ResolvePath("/", common.StripFileScheme(fileURL)))
	return err == nil
}
