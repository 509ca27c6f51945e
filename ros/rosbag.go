package ros

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	rb := rosbag.NewRosBag()
	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to create ros bag")
	}
	return rb, nil
}

// bagKey is the key gobag files a topic's messages under.
func bagKey(topic string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(topic, "/"), "/", "_"))
}

type bagLine struct {
	Meta Time            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Events decodes every message on the decoder's topics and returns them ordered by record
// time. Messages recorded at the same instant keep topic order: transforms, map, start, goal.
func (d Decoder) Events(rb *rosbag.RosBag) ([]Event, error) {
	wanted := map[string]bool{}
	for _, topic := range []string{d.Topics.Transforms, d.Topics.Map, d.Topics.Start, d.Topics.Goal} {
		if topic != "" {
			wanted[topic] = true
		}
	}
	if err := rb.ParseTopicsToJSON(
		"",
		func(int64) bool { return true },
		func(t string) bool { return wanted[t] },
		false,
	); err != nil {
		return nil, errors.Wrapf(err, "error while parsing bag to JSON")
	}

	type ranked struct {
		Event
		rank int
	}
	var all []ranked
	for rank, topic := range []string{d.Topics.Transforms, d.Topics.Map, d.Topics.Start, d.Topics.Goal} {
		msgs := rb.TopicsAsJSON[bagKey(topic)]
		if topic == "" || msgs == nil {
			continue
		}
		events, err := d.decodeLines(topic, msgs)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			all = append(all, ranked{Event: e, rank: rank})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		ti, tj := all[i].Stamp.Time(), all[j].Stamp.Time()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return all[i].rank < all[j].rank
	})
	out := make([]Event, len(all))
	for i := range all {
		out[i] = all[i].Event
	}
	return out, nil
}

func (d Decoder) decodeLines(topic string, msgs *bytes.Buffer) ([]Event, error) {
	var out []Event
	for {
		data, err := msgs.ReadBytes('\n')
		if len(bytes.TrimSpace(data)) > 0 {
			var line bagLine
			if err := json.Unmarshal(data, &line); err != nil {
				return nil, errors.Wrapf(err, "decoding %s", topic)
			}
			events, err := d.Decode(topic, line.Data)
			if err != nil {
				return nil, err
			}
			for i := range events {
				events[i].Stamp = line.Meta
			}
			out = append(out, events...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
	}
}
