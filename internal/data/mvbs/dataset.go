// Package mvbs provides the labeled MVBS (mean volume backscattering
// strength) array container: Sv over ping_time x echo_range x channel,
// with per-ping longitude/latitude.
package mvbs

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Dataset is an immutable labeled array of Sv values. Subsetting
// operations return new views; the backing data is never mutated.
type Dataset struct {
	pingTime  []time.Time
	echoRange []float64
	channels  []string

	// sv is indexed [channel][ping][range].
	sv [][][]float64

	// longitude/latitude are indexed by ping_time only, NaN where the
	// position fix is missing.
	longitude []float64
	latitude  []float64

	// svRange is the precomputed actual_range of Sv (display range).
	svRange [2]float64
}

// New builds a Dataset and validates dimension consistency. The Sv
// actual_range is computed from the data when rangeMin >= rangeMax.
func New(
	pingTime []time.Time,
	echoRange []float64,
	channels []string,
	sv [][][]float64,
	longitude, latitude []float64,
	rangeMin, rangeMax float64,
) (*Dataset, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("dataset has no channels")
	}
	if len(sv) != len(channels) {
		return nil, fmt.Errorf("Sv has %d channel planes, expected %d", len(sv), len(channels))
	}
	for c := range sv {
		if len(sv[c]) != len(pingTime) {
			return nil, fmt.Errorf("channel %q: Sv has %d pings, expected %d", channels[c], len(sv[c]), len(pingTime))
		}
		for p := range sv[c] {
			if len(sv[c][p]) != len(echoRange) {
				return nil, fmt.Errorf("channel %q ping %d: Sv has %d samples, expected %d", channels[c], p, len(sv[c][p]), len(echoRange))
			}
		}
	}
	if len(longitude) != len(pingTime) || len(latitude) != len(pingTime) {
		return nil, fmt.Errorf("longitude/latitude must be indexed by ping_time (%d), got %d/%d",
			len(pingTime), len(longitude), len(latitude))
	}
	if !sort.SliceIsSorted(pingTime, func(i, j int) bool { return pingTime[i].Before(pingTime[j]) }) {
		return nil, fmt.Errorf("ping_time axis is not sorted")
	}
	if !sort.Float64sAreSorted(echoRange) {
		return nil, fmt.Errorf("echo_range axis is not sorted")
	}

	ds := &Dataset{
		pingTime:  pingTime,
		echoRange: echoRange,
		channels:  channels,
		sv:        sv,
		longitude: longitude,
		latitude:  latitude,
	}

	if rangeMin < rangeMax {
		ds.svRange = [2]float64{rangeMin, rangeMax}
	} else {
		ds.svRange = ds.computeRange()
	}
	return ds, nil
}

func (d *Dataset) computeRange() [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, plane := range d.sv {
		for _, row := range plane {
			for _, v := range row {
				if math.IsNaN(v) {
					continue
				}
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}
	}
	if lo > hi {
		return [2]float64{0, 0}
	}
	return [2]float64{lo, hi}
}

// PingTime returns the time axis.
func (d *Dataset) PingTime() []time.Time { return d.pingTime }

// EchoRange returns the depth axis.
func (d *Dataset) EchoRange() []float64 { return d.echoRange }

// Channels returns the channel axis.
func (d *Dataset) Channels() []string { return d.channels }

// Longitude returns the per-ping longitudes.
func (d *Dataset) Longitude() []float64 { return d.longitude }

// Latitude returns the per-ping latitudes.
func (d *Dataset) Latitude() []float64 { return d.latitude }

// SvRange returns the (min, max) display range of Sv.
func (d *Dataset) SvRange() (float64, float64) { return d.svRange[0], d.svRange[1] }

// NumPings returns the length of the ping_time axis.
func (d *Dataset) NumPings() int { return len(d.pingTime) }

// NumSamples returns the length of the echo_range axis.
func (d *Dataset) NumSamples() int { return len(d.echoRange) }

// ChannelIndex resolves a channel name to its axis position.
func (d *Dataset) ChannelIndex(name string) (int, bool) {
	for i, ch := range d.channels {
		if ch == name {
			return i, true
		}
	}
	return -1, false
}

// Sv returns the (ping x range) plane for one channel.
func (d *Dataset) Sv(channel string) ([][]float64, error) {
	i, ok := d.ChannelIndex(channel)
	if !ok {
		return nil, fmt.Errorf("channel not found: %s", channel)
	}
	return d.sv[i], nil
}

// SvValues returns the flattened finite Sv values of one channel. NaN
// samples (masked or missing) are skipped.
func (d *Dataset) SvValues(channel string) ([]float64, error) {
	plane, err := d.Sv(channel)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(plane)*len(d.echoRange))
	for _, row := range plane {
		for _, v := range row {
			if !math.IsNaN(v) {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// TimeExtent returns the first and last ping times; ok is false for an
// empty time axis.
func (d *Dataset) TimeExtent() (first, last time.Time, ok bool) {
	if len(d.pingTime) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.pingTime[0], d.pingTime[len(d.pingTime)-1], true
}

// DepthExtent returns the shallowest and deepest echo_range values; ok
// is false for an empty depth axis.
func (d *Dataset) DepthExtent() (min, max float64, ok bool) {
	if len(d.echoRange) == 0 {
		return 0, 0, false
	}
	return d.echoRange[0], d.echoRange[len(d.echoRange)-1], true
}

// searchTimeLow returns the first index with pingTime >= t.
func (d *Dataset) searchTimeLow(t time.Time) int {
	return sort.Search(len(d.pingTime), func(i int) bool { return !d.pingTime[i].Before(t) })
}

// searchTimeHigh returns one past the last index with pingTime <= t.
func (d *Dataset) searchTimeHigh(t time.Time) int {
	return sort.Search(len(d.pingTime), func(i int) bool { return d.pingTime[i].After(t) })
}

// Slice selects the inclusive coordinate range [t0,t1] x [dMin,dMax],
// like a label-based range selection on the sorted axes. Depth bounds
// are normalized so argument order does not matter. Bounds entirely
// outside the axes yield an empty, valid dataset.
func (d *Dataset) Slice(t0, t1 time.Time, dMin, dMax float64) *Dataset {
	if t1.Before(t0) {
		t0, t1 = t1, t0
	}
	if dMax < dMin {
		dMin, dMax = dMax, dMin
	}

	pLo := d.searchTimeLow(t0)
	pHi := d.searchTimeHigh(t1)
	if pHi < pLo {
		pHi = pLo
	}

	rLo := sort.SearchFloat64s(d.echoRange, dMin)
	rHi := sort.Search(len(d.echoRange), func(i int) bool { return d.echoRange[i] > dMax })
	if rHi < rLo {
		rHi = rLo
	}

	sv := make([][][]float64, len(d.channels))
	for c := range d.sv {
		plane := make([][]float64, pHi-pLo)
		for p := pLo; p < pHi; p++ {
			plane[p-pLo] = d.sv[c][p][rLo:rHi]
		}
		sv[c] = plane
	}

	out := &Dataset{
		pingTime:  d.pingTime[pLo:pHi],
		echoRange: d.echoRange[rLo:rHi],
		channels:  d.channels,
		sv:        sv,
		longitude: d.longitude[pLo:pHi],
		latitude:  d.latitude[pLo:pHi],
		svRange:   d.svRange,
	}
	return out
}

// WhereGeo masks the dataset to pings with strictly-inside longitude and
// latitude. Axes are unchanged; Sv and positions outside the box become
// NaN, mirroring a predicate mask rather than a coordinate slice.
func (d *Dataset) WhereGeo(lonMin, latMin, lonMax, latMax float64) *Dataset {
	if lonMax < lonMin {
		lonMin, lonMax = lonMax, lonMin
	}
	if latMax < latMin {
		latMin, latMax = latMax, latMin
	}

	inside := make([]bool, len(d.pingTime))
	for i := range inside {
		lon, lat := d.longitude[i], d.latitude[i]
		inside[i] = lon > lonMin && lon < lonMax && lat > latMin && lat < latMax
	}

	sv := make([][][]float64, len(d.channels))
	for c := range d.sv {
		plane := make([][]float64, len(d.pingTime))
		for p := range d.sv[c] {
			if inside[p] {
				plane[p] = d.sv[c][p]
				continue
			}
			masked := make([]float64, len(d.echoRange))
			for r := range masked {
				masked[r] = math.NaN()
			}
			plane[p] = masked
		}
		sv[c] = plane
	}

	lon := make([]float64, len(d.longitude))
	lat := make([]float64, len(d.latitude))
	for i := range inside {
		if inside[i] {
			lon[i] = d.longitude[i]
			lat[i] = d.latitude[i]
		} else {
			lon[i] = math.NaN()
			lat[i] = math.NaN()
		}
	}

	return &Dataset{
		pingTime:  d.pingTime,
		echoRange: d.echoRange,
		channels:  d.channels,
		sv:        sv,
		longitude: lon,
		latitude:  lat,
		svRange:   d.svRange,
	}
}

// SelChannels restricts the dataset to the named channels, in the given
// order. Unknown names are an error.
func (d *Dataset) SelChannels(names ...string) (*Dataset, error) {
	sv := make([][][]float64, 0, len(names))
	chs := make([]string, 0, len(names))
	for _, name := range names {
		i, ok := d.ChannelIndex(name)
		if !ok {
			return nil, fmt.Errorf("channel not found: %s", name)
		}
		sv = append(sv, d.sv[i])
		chs = append(chs, d.channels[i])
	}
	return &Dataset{
		pingTime:  d.pingTime,
		echoRange: d.echoRange,
		channels:  chs,
		sv:        sv,
		longitude: d.longitude,
		latitude:  d.latitude,
		svRange:   d.svRange,
	}, nil
}

// TrackPoints returns the (lon, lat, ping_time) triples with finite
// positions, in ping order.
func (d *Dataset) TrackPoints() (lon, lat []float64, at []time.Time) {
	for i := range d.pingTime {
		if math.IsNaN(d.longitude[i]) || math.IsNaN(d.latitude[i]) {
			continue
		}
		lon = append(lon, d.longitude[i])
		lat = append(lat, d.latitude[i])
		at = append(at, d.pingTime[i])
	}
	return lon, lat, at
}
