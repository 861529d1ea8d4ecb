package overlay

import (
	"sort"

	"github.com/breatheroute/roadtrip/internal/trip"
)

// StyleKey names a marker presentation style.
type StyleKey string

const (
	StyleOrigin         StyleKey = "origin"
	StyleDestination    StyleKey = "destination"
	StyleWaypoint       StyleKey = "waypoint"
	StyleWeather        StyleKey = "weather"
	StyleTraffic        StyleKey = "traffic"
	StyleRestaurant     StyleKey = "restaurant"
	StyleHotel          StyleKey = "hotel"
	StyleAttraction     StyleKey = "attraction"
	StyleRecommendation StyleKey = "recommendation"
	StyleGeneric        StyleKey = "generic"
)

// AnySubcategory matches every subcategory of a rule's category.
const AnySubcategory = "*"

// MarkerStyle is how the display layer draws one style.
type MarkerStyle struct {
	IconURL  string `json:"iconUrl" mapstructure:"icon_url"`
	IconSize [2]int `json:"iconSize" mapstructure:"icon_size"`
	Color    string `json:"color" mapstructure:"color"`
}

// StyleRule maps a (category, subcategory) pair to a style.
type StyleRule struct {
	Category    Category `json:"category" mapstructure:"category"`
	Subcategory string   `json:"subcategory" mapstructure:"subcategory"`
	Style       StyleKey `json:"style" mapstructure:"style"`
}

// StyleConfig is the full presentation table handed to the classifier.
type StyleConfig struct {
	Rules            []StyleRule                     `json:"rules" mapstructure:"rules"`
	Styles           map[StyleKey]MarkerStyle        `json:"styles" mapstructure:"styles"`
	CongestionColors map[trip.CongestionLevel]string `json:"congestionColors" mapstructure:"congestion_colors"`
	RouteColor       string                          `json:"routeColor" mapstructure:"route_color"`
}

const iconBase = "https://maps.google.com/mapfiles/ms/icons/"

var defaultIconSize = [2]int{30, 30}

// DefaultStyleConfig returns the stock map styling.
func DefaultStyleConfig() StyleConfig {
	return StyleConfig{
		Rules: []StyleRule{
			{Category: CategoryOrigin, Subcategory: AnySubcategory, Style: StyleOrigin},
			{Category: CategoryDestination, Subcategory: AnySubcategory, Style: StyleDestination},
			{Category: CategoryWaypoint, Subcategory: AnySubcategory, Style: StyleWaypoint},
			{Category: CategoryWeather, Subcategory: AnySubcategory, Style: StyleWeather},
			{Category: CategoryTraffic, Subcategory: AnySubcategory, Style: StyleTraffic},
			{Category: CategoryRecommendation, Subcategory: string(CategoryRestaurant), Style: StyleRestaurant},
			{Category: CategoryRecommendation, Subcategory: string(CategoryHotel), Style: StyleHotel},
			{Category: CategoryRecommendation, Subcategory: string(CategoryAttraction), Style: StyleAttraction},
			{Category: CategoryRecommendation, Subcategory: AnySubcategory, Style: StyleRecommendation},
			{Category: CategoryRestaurant, Subcategory: AnySubcategory, Style: StyleRestaurant},
			{Category: CategoryHotel, Subcategory: AnySubcategory, Style: StyleHotel},
			{Category: CategoryAttraction, Subcategory: AnySubcategory, Style: StyleAttraction},
		},
		Styles: map[StyleKey]MarkerStyle{
			StyleOrigin: {
				IconURL:  "https://developers.google.com/maps/documentation/javascript/examples/full/images/beachflag.png",
				IconSize: defaultIconSize,
				Color:    "#F4B400",
			},
			StyleDestination:    {IconURL: iconBase + "flag.png", IconSize: defaultIconSize, Color: "#DB4437"},
			StyleWaypoint:       {IconURL: iconBase + "star.png", IconSize: defaultIconSize, Color: "#FBC02D"},
			StyleWeather:        {IconURL: iconBase + "blue-dot.png", IconSize: defaultIconSize, Color: "#4285F4"},
			StyleTraffic:        {IconURL: iconBase + "red-dot.png", IconSize: defaultIconSize, Color: "#EA4335"},
			StyleRecommendation: {IconURL: iconBase + "orange-dot.png", IconSize: defaultIconSize, Color: "#FB8C00"},
			StyleRestaurant:     {IconURL: iconBase + "green-dot.png", IconSize: defaultIconSize, Color: "#34A853"},
			StyleHotel:          {IconURL: iconBase + "purple-dot.png", IconSize: defaultIconSize, Color: "#8E24AA"},
			StyleAttraction:     {IconURL: iconBase + "yellow-dot.png", IconSize: defaultIconSize, Color: "#FDD835"},
			StyleGeneric:        {IconURL: iconBase + "ltblue-dot.png", IconSize: defaultIconSize, Color: "#9E9E9E"},
		},
		CongestionColors: map[trip.CongestionLevel]string{
			trip.CongestionLight:    "#34A853",
			trip.CongestionModerate: "#FFBF00",
			trip.CongestionHeavy:    "#EA4335",
			trip.CongestionUnknown:  "#9E9E9E",
		},
		RouteColor: "#1A73E8",
	}
}

type ruleKey struct {
	category    Category
	subcategory string
}

// Classifier resolves marker styles from a fixed lookup table.
// It is safe for concurrent use.
type Classifier struct {
	table      map[ruleKey]StyleKey
	styles     map[StyleKey]MarkerStyle
	congestion map[trip.CongestionLevel]string
	routeColor string
}

// NewClassifier builds a classifier from cfg. Later rules for the same pair
// override earlier ones.
func NewClassifier(cfg StyleConfig) *Classifier {
	c := &Classifier{
		table:      make(map[ruleKey]StyleKey, len(cfg.Rules)),
		styles:     make(map[StyleKey]MarkerStyle, len(cfg.Styles)),
		congestion: make(map[trip.CongestionLevel]string, len(cfg.CongestionColors)),
		routeColor: cfg.RouteColor,
	}
	for _, r := range cfg.Rules {
		sub := r.Subcategory
		if sub == "" {
			sub = AnySubcategory
		}
		c.table[ruleKey{category: r.Category, subcategory: sub}] = r.Style
	}
	for k, v := range cfg.Styles {
		c.styles[k] = v
	}
	for k, v := range cfg.CongestionColors {
		c.congestion[k] = v
	}
	return c
}

// Classify returns the style for a marker. The lookup tries the exact pair,
// then the category wildcard, then falls back to StyleGeneric.
func (c *Classifier) Classify(category Category, subcategory string) StyleKey {
	if subcategory != "" {
		if key, ok := c.table[ruleKey{category: category, subcategory: subcategory}]; ok {
			return key
		}
	}
	if key, ok := c.table[ruleKey{category: category, subcategory: AnySubcategory}]; ok {
		return key
	}
	return StyleGeneric
}

// Style returns the presentation for key, or the generic style.
func (c *Classifier) Style(key StyleKey) MarkerStyle {
	if s, ok := c.styles[key]; ok {
		return s
	}
	return c.styles[StyleGeneric]
}

// CongestionColor returns the stroke color for a congestion level.
func (c *Classifier) CongestionColor(level trip.CongestionLevel) string {
	if color, ok := c.congestion[level]; ok {
		return color
	}
	return c.congestion[trip.CongestionUnknown]
}

// Config returns a copy of the table the classifier was built from,
// with rules in a stable order.
func (c *Classifier) Config() StyleConfig {
	cfg := StyleConfig{
		Styles:           make(map[StyleKey]MarkerStyle, len(c.styles)),
		CongestionColors: make(map[trip.CongestionLevel]string, len(c.congestion)),
		RouteColor:       c.routeColor,
	}
	for k, v := range c.table {
		cfg.Rules = append(cfg.Rules, StyleRule{Category: k.category, Subcategory: k.subcategory, Style: v})
	}
	sortRules(cfg.Rules)
	for k, v := range c.styles {
		cfg.Styles[k] = v
	}
	for k, v := range c.congestion {
		cfg.CongestionColors[k] = v
	}
	return cfg
}

func sortRules(rules []StyleRule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Category != rules[j].Category {
			return rules[i].Category < rules[j].Category
		}
		return rules[i].Subcategory < rules[j].Subcategory
	})
}
