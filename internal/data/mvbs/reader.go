package mvbs

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/klauspost/compress/zstd"
)

// Variable names expected in an MVBS file.
const (
	varSv        = "Sv"
	varPingTime  = "ping_time"
	varEchoRange = "echo_range"
	varChannel   = "channel"
	varLongitude = "longitude"
	varLatitude  = "latitude"
)

// Open loads an MVBS dataset from a NetCDF file. Files ending in .zst
// are transparently decompressed to a temporary file first.
func Open(path string) (*Dataset, error) {
	ncPath := path
	if strings.HasSuffix(path, ".zst") {
		tmp, err := decompress(path)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
		defer os.Remove(tmp)
		ncPath = tmp
	}

	group, err := netcdf.Open(ncPath)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	defer group.Close()

	ds, err := fromGroup(group)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log.Printf("loaded MVBS dataset %s: %d channels, %d pings, %d samples",
		filepath.Base(path), len(ds.channels), len(ds.pingTime), len(ds.echoRange))
	return ds, nil
}

func decompress(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return "", err
	}
	defer dec.Close()

	out, err := os.CreateTemp("", "mvbs-*.nc")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func fromGroup(group api.Group) (*Dataset, error) {
	timeVar, err := group.GetVariable(varPingTime)
	if err != nil {
		return nil, fmt.Errorf("missing coordinate %s: %w", varPingTime, err)
	}
	pingTime, err := decodeTimes(timeVar)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", varPingTime, err)
	}

	rangeVar, err := group.GetVariable(varEchoRange)
	if err != nil {
		return nil, fmt.Errorf("missing coordinate %s: %w", varEchoRange, err)
	}
	echoRange, err := asFloat64s(rangeVar.Values)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", varEchoRange, err)
	}

	chanVar, err := group.GetVariable(varChannel)
	if err != nil {
		return nil, fmt.Errorf("missing coordinate %s: %w", varChannel, err)
	}
	channels, err := asStrings(chanVar.Values)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", varChannel, err)
	}

	svVar, err := group.GetVariable(varSv)
	if err != nil {
		return nil, fmt.Errorf("missing variable %s: %w", varSv, err)
	}
	if got := svVar.Dimensions; len(got) != 3 ||
		got[0] != varChannel || got[1] != varPingTime || got[2] != varEchoRange {
		return nil, fmt.Errorf("Sv dimensions %v, expected [%s %s %s]",
			svVar.Dimensions, varChannel, varPingTime, varEchoRange)
	}
	sv, err := asFloat64s3(svVar.Values)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", varSv, err)
	}

	lon, err := positionAxis(group, varLongitude, len(pingTime))
	if err != nil {
		return nil, err
	}
	lat, err := positionAxis(group, varLatitude, len(pingTime))
	if err != nil {
		return nil, err
	}

	rangeMin, rangeMax := actualRange(svVar.Attributes)
	return New(pingTime, echoRange, channels, sv, lon, lat, rangeMin, rangeMax)
}

// positionAxis reads a per-ping position variable, tolerating its
// absence by filling NaN (some MVBS files carry no GPS track).
func positionAxis(group api.Group, name string, n int) ([]float64, error) {
	v, err := group.GetVariable(name)
	if err != nil {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = math.NaN()
		}
		return vals, nil
	}
	vals, err := asFloat64s(v.Values)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(vals) != n {
		return nil, fmt.Errorf("%s has %d values, expected %d", name, len(vals), n)
	}
	return vals, nil
}

// actualRange extracts the Sv display range attribute; zero values make
// New compute the range from the data.
func actualRange(attrs api.AttributeMap) (float64, float64) {
	if attrs == nil {
		return 0, 0
	}
	raw, has := attrs.Get("actual_range")
	if !has {
		return 0, 0
	}
	vals, err := asFloat64s(raw)
	if err != nil || len(vals) != 2 {
		return 0, 0
	}
	return vals[0], vals[1]
}

// decodeTimes converts a CF-style numeric time axis to time.Time using
// the "units" attribute ("<unit> since <epoch>"). Axes without units
// are taken as nanoseconds since the Unix epoch.
func decodeTimes(v *api.Variable) ([]time.Time, error) {
	ticks, err := asFloat64s(v.Values)
	if err != nil {
		return nil, err
	}

	scale := time.Nanosecond
	epoch := time.Unix(0, 0).UTC()
	if v.Attributes != nil {
		if raw, has := v.Attributes.Get("units"); has {
			if s, ok := raw.(string); ok {
				scale, epoch, err = parseTimeUnits(s)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	out := make([]time.Time, len(ticks))
	for i, t := range ticks {
		out[i] = epoch.Add(time.Duration(t * float64(scale)))
	}
	return out, nil
}

var timeScales = map[string]time.Duration{
	"nanoseconds":  time.Nanosecond,
	"microseconds": time.Microsecond,
	"milliseconds": time.Millisecond,
	"seconds":      time.Second,
	"minutes":      time.Minute,
	"hours":        time.Hour,
	"days":         24 * time.Hour,
}

var epochLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}
	scale, ok := timeScales[strings.TrimSpace(parts[0])]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", parts[0])
	}
	stamp := strings.TrimSpace(strings.TrimSuffix(parts[1], "UTC"))
	for _, layout := range epochLayouts {
		if epoch, err := time.Parse(layout, stamp); err == nil {
			return scale, epoch.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported time epoch %q", parts[1])
}

// asFloat64s flattens a 1-D numeric slice of any NetCDF element type.
func asFloat64s(values interface{}) ([]float64, error) {
	switch vs := values.(type) {
	case []float64:
		return vs, nil
	case []float32:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, nil
	case float64:
		return []float64{vs}, nil
	case float32:
		return []float64{float64(vs)}, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", values)
	}
}

func asFloat64s3(values interface{}) ([][][]float64, error) {
	switch vs := values.(type) {
	case [][][]float64:
		return vs, nil
	case [][][]float32:
		out := make([][][]float64, len(vs))
		for i, plane := range vs {
			out[i] = make([][]float64, len(plane))
			for j, row := range plane {
				conv := make([]float64, len(row))
				for k, v := range row {
					conv[k] = float64(v)
				}
				out[i][j] = conv
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported 3-D numeric type %T", values)
	}
}

func asStrings(values interface{}) ([]string, error) {
	switch vs := values.(type) {
	case []string:
		return vs, nil
	case string:
		return []string{vs}, nil
	default:
		return nil, fmt.Errorf("unsupported string type %T", values)
	}
}
