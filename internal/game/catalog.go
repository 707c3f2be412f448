package game

// Catalog is the static seed data every new game starts from.
type Catalog struct {
	Assets       []AssetType
	Upgrades     []Upgrade
	Tiers        []Tier
	Achievements []Achievement
	Events       []MarketEvent
}

var starterFleet = []string{"excavator", "skidsteer", "scissorlift", "generator", "pressurewasher", "jackhammer"}

func asset(id, name, desc string, price, revenue, unlockAt float64) AssetType {
	a := AssetType{ID: id, Name: name, Description: desc, BasePrice: price, BaseRevenue: revenue}
	if unlockAt > 0 {
		a.Unlock = &AssetUnlock{Currency: unlockAt}
	}
	return a
}

// DefaultCatalog returns a fresh copy of the equipment-rental catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Assets:       defaultAssets(),
		Upgrades:     defaultUpgrades(),
		Tiers:        defaultTiers(),
		Achievements: defaultAchievements(),
		Events:       defaultEvents(),
	}
}

func defaultAssets() []AssetType {
	return []AssetType{
		asset("excavator", "Compact Excavator", "A small but reliable excavator for basic digging tasks.", 100, 2, 0),
		asset("generator", "Portable Generator", "Provides power to job sites without electrical access.", 150, 3, 0),
		asset("pressurewasher", "Pressure Washer", "High-pressure water sprayer for cleaning surfaces.", 200, 4, 0),
		asset("jackhammer", "Jackhammer", "Breaks up concrete, asphalt, and rock for demolition.", 250, 5, 0),
		asset("skidsteer", "Skid Steer Loader", "Versatile loader for moving materials around job sites.", 250, 5, 500),
		asset("scissorlift", "Scissor Lift", "Elevating work platform for reaching high places safely.", 500, 10, 1500),
		asset("bulldozer", "Bulldozer", "Pushes large quantities of soil or rubble.", 800, 16, 2000),
		asset("trencher", "Trencher", "Creates trenches for pipes, cables, or drainage.", 1200, 24, 3000),
		asset("crane", "Mobile Crane", "Moves heavy materials around construction sites.", 1500, 30, 5000),
		asset("telehandler", "Telehandler", "Lifting machine with an extendable boom.", 2000, 40, 7000),
		asset("concreteMixer", "Concrete Mixer", "Mixes cement, aggregates, and water on site.", 3000, 60, 10000),
		asset("dumptruck", "Dump Truck", "Hauls sand, gravel, or demolition waste.", 3500, 70, 12000),
		asset("loader", "Wheel Loader", "Loads material into trucks and clears land.", 4500, 90, 15000),
		asset("grader", "Motor Grader", "Creates flat surfaces for roads and foundations.", 7000, 140, 20000),
		asset("roadPaver", "Asphalt Paver", "Lays asphalt on roads and parking lots.", 8000, 160, 25000),
		asset("scraper", "Earth Scraper", "Moves large volumes of earth over long distances.", 12000, 240, 40000),
		asset("drillrig", "Drilling Rig", "Drills holes for wells and foundations.", 15000, 300, 50000),
		asset("concreteplacer", "Concrete Boom Pump", "Delivers concrete to hard-to-reach places.", 18000, 360, 70000),
		asset("tunnelBorer", "Tunnel Boring Machine", "Excavates tunnels through soil and rock.", 20000, 400, 80000),
		asset("piledriver", "Pile Driver", "Drives piles for foundation support.", 25000, 500, 90000),
		asset("dragline", "Dragline Excavator", "Massive excavator for surface mining.", 30000, 600, 100000),
		asset("megaCrane", "Tower Crane", "Fixed crane for building skyscrapers.", 50000, 1000, 200000),
	}
}

func defaultUpgrades() []Upgrade {
	return []Upgrade{
		{ID: "betterBuckets", Name: "Better Excavator Buckets", Description: "Increases excavator revenue by 25%", Cost: 200, Multiplier: 1.25, AppliesTo: []string{"excavator"}},
		{ID: "highPressureNozzles", Name: "High-Pressure Nozzles", Description: "Increases pressure washer revenue by 25%", Cost: 300, Multiplier: 1.25, AppliesTo: []string{"pressurewasher"}},
		{ID: "efficientGenerators", Name: "Efficient Generator Motors", Description: "Increases generator revenue by 30%", Cost: 350, Multiplier: 1.3, AppliesTo: []string{"generator"}},
		{
			ID: "fuelEfficiency", Name: "Fuel Efficiency Program", Description: "Increases starter fleet revenue by 10%",
			Cost: 500, Multiplier: 1.1, AppliesTo: append([]string(nil), starterFleet...),
			Unlock: &UnlockCondition{RevenueRate: 50, Description: "Reach 50/second total revenue"},
		},
		{
			ID: "improvedHydraulics", Name: "Improved Hydraulics", Description: "Increases skid steer loader revenue by 30%",
			Cost: 750, Multiplier: 1.3, AppliesTo: []string{"skidsteer"},
			Unlock: &UnlockCondition{OwnAll: []string{"skidsteer"}, Description: "Own at least one skid steer loader"},
		},
		{
			ID: "diamondTips", Name: "Diamond-Tipped Bits", Description: "Increases jackhammer revenue by 35%",
			Cost: 400, Multiplier: 1.35, AppliesTo: []string{"jackhammer"},
			Unlock: &UnlockCondition{OwnAtLeast: map[string]int{"jackhammer": 3}, Description: "Own at least 3 jackhammers"},
		},
		{
			ID: "elevationExtension", Name: "Elevation Extension Kit", Description: "Increases scissor lift revenue by 40%",
			Cost: 900, Multiplier: 1.4, AppliesTo: []string{"scissorlift"},
			Unlock: &UnlockCondition{OwnAll: []string{"scissorlift"}, Description: "Own at least one scissor lift"},
		},
		{
			ID: "maintenanceContract", Name: "Preventative Maintenance", Description: "Increases starter fleet revenue by 15%",
			Cost: 1500, Multiplier: 1.15, AppliesTo: append([]string(nil), starterFleet...),
			Unlock: &UnlockCondition{TotalAssets: 10, Description: "Own at least 10 pieces of equipment"},
		},
		{
			ID: "advancedTraining", Name: "Advanced Operator Training", Description: "Increases starter fleet revenue by 20%",
			Cost: 3000, Multiplier: 1.2, AppliesTo: append([]string(nil), starterFleet...),
			Unlock: &UnlockCondition{Currency: 5000, RevenueRate: 150, Description: "Hold 5,000 in cash with 150/second revenue"},
		},
	}
}

func defaultTiers() []Tier {
	return []Tier{
		{Level: 1, Name: "Startup", Description: "A small rental operation just getting started."},
		{
			Level: 2, Name: "Small Business", Description: "Your rental business is gaining traction.",
			RevenueRequirement: 50, AssetRequirement: 5,
			Rewards: TierReward{CurrencyBonus: 500, RevenueMultiplier: 0.05, UnlockAssets: []string{"bulldozer", "trencher"}},
		},
		{
			Level: 3, Name: "Growing Enterprise", Description: "Your business is expanding rapidly.",
			RevenueRequirement: 200, AssetRequirement: 15,
			Rewards: TierReward{CurrencyBonus: 2000, RevenueMultiplier: 0.1, UnlockAssets: []string{"crane", "telehandler"}, UnlockUpgrades: []string{"operatorTraining"}},
		},
		{
			Level: 4, Name: "Regional Player", Description: "Your company is known throughout the region.",
			RevenueRequirement: 1000, AssetRequirement: 30,
			Rewards: TierReward{CurrencyBonus: 10000, RevenueMultiplier: 0.15, UnlockAssets: []string{"concreteMixer", "dumptruck"}, UnlockUpgrades: []string{"fleetManagement"}},
		},
		{
			Level: 5, Name: "National Corporation", Description: "Your corporation has locations across the country.",
			RevenueRequirement: 5000, AssetRequirement: 50,
			Rewards: TierReward{CurrencyBonus: 50000, RevenueMultiplier: 0.2, UnlockAssets: []string{"roadPaver", "grader", "loader"}, UnlockUpgrades: []string{"corporateContracts"}},
		},
		{
			Level: 6, Name: "Industry Leader", Description: "You are the leading rental company in the industry.",
			RevenueRequirement: 20000, AssetRequirement: 100,
			Rewards: TierReward{CurrencyBonus: 200000, RevenueMultiplier: 0.25, UnlockAssets: []string{"tunnelBorer", "drillrig", "scraper"}, UnlockUpgrades: []string{"industryInnovation"}},
		},
		{
			Level: 7, Name: "Global Empire", Description: "Your rental empire spans the globe.",
			RevenueRequirement: 100000, AssetRequirement: 200,
			Rewards: TierReward{CurrencyBonus: 1000000, RevenueMultiplier: 0.5, UnlockAssets: []string{"megaCrane", "dragline", "piledriver", "concreteplacer"}, UnlockUpgrades: []string{"globalLogistics"}},
		},
	}
}

func achievement(id, name, desc string, req Requirement, reward Reward) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Requirement: req, Reward: reward}
}

func defaultAchievements() []Achievement {
	return []Achievement{
		achievement("firstPurchase", "First Steps", "Purchase your first piece of equipment",
			Requirement{Kind: RequireAssets, Target: 1}, Reward{Kind: RewardCurrency, Amount: 50}),
		achievement("moneyMaker", "Money Maker", "Earn a total of $1,000",
			Requirement{Kind: RequireCurrency, Target: 1000}, Reward{Kind: RewardCurrency, Amount: 200}),
		achievement("fleetManager", "Fleet Manager", "Own 5 pieces of equipment",
			Requirement{Kind: RequireAssets, Target: 5}, Reward{Kind: RewardMultiplier, Amount: 0.05}),
		achievement("excavatorExpert", "Excavator Expert", "Own 10 excavators",
			Requirement{Kind: RequireAssets, Target: 10, AssetID: "excavator"}, Reward{Kind: RewardMultiplier, Amount: 0.1}),
		achievement("upgradeEnthusiast", "Upgrade Enthusiast", "Purchase your first upgrade",
			Requirement{Kind: RequireUpgrades, Target: 1}, Reward{Kind: RewardCurrency, Amount: 100}),
		achievement("revenueStream", "Revenue Stream", "Reach $10/s revenue rate",
			Requirement{Kind: RequireRevenue, Target: 10}, Reward{Kind: RewardCurrency, Amount: 500}),
		achievement("timeCommitment", "Time Commitment", "Play for 5 minutes",
			Requirement{Kind: RequireTime, Target: 300}, Reward{Kind: RewardCurrency, Amount: 150}),
		achievement("businessLevel2", "Small Business", "Reach business level 2",
			Requirement{Kind: RequireTier, Target: 2}, Reward{Kind: RewardCurrency, Amount: 500}),
		achievement("businessLevel3", "Growing Enterprise", "Reach business level 3",
			Requirement{Kind: RequireTier, Target: 3}, Reward{Kind: RewardMultiplier, Amount: 0.1}),
		achievement("businessLevel4", "Regional Player", "Reach business level 4",
			Requirement{Kind: RequireTier, Target: 4}, Reward{Kind: RewardCurrency, Amount: 10000}),
		achievement("businessLevel5", "National Corporation", "Reach business level 5",
			Requirement{Kind: RequireTier, Target: 5}, Reward{Kind: RewardMultiplier, Amount: 0.2}),
		achievement("businessLevel6", "Industry Leader", "Reach business level 6",
			Requirement{Kind: RequireTier, Target: 6}, Reward{Kind: RewardCurrency, Amount: 200000}),
		achievement("businessLevel7", "Global Empire", "Reach business level 7",
			Requirement{Kind: RequireTier, Target: 7}, Reward{Kind: RewardMultiplier, Amount: 0.5}),
	}
}

func defaultEvents() []MarketEvent {
	return []MarketEvent{
		{
			ID: "constructionBoom", Name: "Construction Boom", DurationSeconds: 120,
			Description: "A surge in construction projects has increased demand for equipment rentals.",
			Effects:     MarketEffects{GlobalRevenueBonus: 0.25},
		},
		{
			ID: "economicDownturn", Name: "Economic Downturn", DurationSeconds: 90,
			Description: "A slowdown in the economy has reduced demand for equipment rentals.",
			Effects:     MarketEffects{GlobalRevenueBonus: -0.15, GlobalPriceMultiplier: 0.8},
		},
		{
			ID: "fuelShortage", Name: "Fuel Shortage", DurationSeconds: 60,
			Description: "Rising fuel costs are affecting heavy equipment operations.",
			Effects:     MarketEffects{RevenueBonus: map[string]float64{"excavator": -0.2, "bulldozer": -0.3, "dumptruck": -0.4}},
		},
		{
			ID: "governmentInfrastructureProject", Name: "Government Infrastructure Project", DurationSeconds: 180,
			Description: "A major government project has increased demand for specific equipment.",
			Effects:     MarketEffects{RevenueBonus: map[string]float64{"crane": 0.5, "excavator": 0.3, "concreteMixer": 0.4}},
		},
		{
			ID: "equipmentShortage", Name: "Equipment Shortage", DurationSeconds: 150,
			Description: "A shortage of new equipment has increased the value of your fleet.",
			Effects:     MarketEffects{GlobalRevenueBonus: 0.2, GlobalPriceMultiplier: 1.3},
		},
		{
			ID: "seasonalDemand", Name: "Seasonal Demand", DurationSeconds: 120,
			Description: "Seasonal construction projects have created fluctuations in equipment demand.",
			Effects: MarketEffects{
				RevenueBonus:    map[string]float64{"bulldozer": 0.4, "roadPaver": 0.3, "dumptruck": 0.2},
				PriceMultiplier: map[string]float64{"excavator": 0.8, "crane": 1.2},
			},
		},
		{
			ID: "technologicalBreakthrough", Name: "Technological Breakthrough", DurationSeconds: 90,
			Description: "New technology has temporarily improved equipment efficiency.",
			Effects:     MarketEffects{GlobalRevenueBonus: 0.15},
		},
	}
}
